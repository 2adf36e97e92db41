package xconf

import "testing"

func FuzzNewFromBytes(f *testing.F) {
	f.Add([]byte(sampleYAML), true)
	f.Add([]byte(`{"pool":{"max_workers":4}}`), false)
	f.Add([]byte("{"), false)
	f.Add([]byte(":\n  - ["), true)

	f.Fuzz(func(t *testing.T, data []byte, isYAML bool) {
		format := FormatJSON
		if isYAML {
			format = FormatYAML
		}
		l, err := NewFromBytes(data, format)
		if err != nil {
			return
		}
		var pool poolSection
		_ = l.Unmarshal("pool", &pool)
	})
}
