package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"ontoimport"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_Formats(t *testing.T) {
	code, out, _ := runCLI(t, "formats")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "EXTENSION")
	assert.Regexp(t, `\.nt\s+N-Triples\s+true\s+true`, out)
	assert.Regexp(t, `\.owl\s+RDF/XML\s+true\s+true`, out)
	assert.Regexp(t, `\.jsonld\s+JSON-LD\s+true\s+false`, out)
	assert.Regexp(t, `\.trig\s+TriG\s+false\s+false`, out)
}

func TestCLI_ImportRequiresFiles(t *testing.T) {
	code, _, errOut := runCLI(t, "import")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "import")
}

func TestCLI_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "log:\n  level: loud\n")
	code, _, errOut := runCLI(t, "--config", path, "import", "a.nt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "配置错误")
}

func TestCLI_WatchRequiresDir(t *testing.T) {
	code, _, errOut := runCLI(t, "watch")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "--dir")
}

func TestCLI_MissingConfigFile(t *testing.T) {
	code, _, errOut := runCLI(t, "-c", "/nonexistent/ontoimport.yaml", "health")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "错误")
}
