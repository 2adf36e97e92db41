package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_JSONWithEnrich(t *testing.T) {
	var buf bytes.Buffer
	logger, _, cleanup, err := New().
		SetOutput(&buf).
		SetFormat("JSON").
		SetAttrs(slog.String("service", "ontoimport")).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup()) }()

	ctx := WithFile(WithImport(context.Background(), "imp-1"), "pizza.owl")
	logger.InfoContext(ctx, "batch committed", slog.Int("vertices", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "batch committed", rec["msg"])
	assert.Equal(t, "imp-1", rec[KeyImportID])
	assert.Equal(t, "pizza.owl", rec[KeyFile])
	assert.Equal(t, "ontoimport", rec["service"])
	assert.EqualValues(t, 3, rec["vertices"])
}

func TestBuilder_DynamicLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, level, _, err := New().SetOutput(&buf).SetLevelString("warn").Build()
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestBuilder_Errors(t *testing.T) {
	_, _, _, err := New().SetLevelString("loud").Build()
	assert.ErrorIs(t, err, ErrUnknownLevel)

	_, _, _, err = New().SetFormat("xml").Build()
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, _, err = New().SetRotation(" ", RotationOptions{}).Build()
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestBuilder_Rotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ontoimport.log")
	logger, _, cleanup, err := New().
		SetRotation(file, RotationOptions{MaxSizeMB: 1, MaxBackups: 2}).
		SetEnrich(false).
		SetAddSource(true).
		Build()
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "source=")
}

func TestEnrichHandler(t *testing.T) {
	_, err := NewEnrichHandler(nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	var buf bytes.Buffer
	h, err := NewEnrichHandler(slog.NewTextHandler(&buf, nil))
	require.NoError(t, err)

	logger := slog.New(h).With("k", "v").WithGroup("g")
	logger.InfoContext(WithImport(context.Background(), "imp-2"), "m")
	assert.Contains(t, buf.String(), "g.import_id=imp-2")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	logger.Info("no ctx values")
	assert.NotContains(t, buf.String(), "import_id")

	//nolint:staticcheck // 测试 nil context
	assert.Empty(t, ImportID(nil))
	//nolint:staticcheck // 测试 nil context
	assert.Empty(t, File(nil))
}
