package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "link.csv")

	assert.Equal(t, abs, ResolvePath("/srv/data", abs))
	assert.Equal(t, filepath.Join("/srv/data", "out", "link.csv"), ResolvePath("/srv/data", "out/link.csv"))
	assert.Equal(t, "link.csv", ResolvePath("", "link.csv"))
	assert.Equal(t, "", ResolvePath("/srv/data", ""))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Format
	}{
		{"", "link.csv", CSV},
		{"", "link.XLSX", XLSX},
		{"", "link.db", SQLite},
		{"", "link.sqlite", SQLite},
		{"", "link", CSV},
		{"CSV", "link.xlsx", CSV},
		{"xlsx", "link.csv", XLSX},
		{" SQLite ", "link.csv", SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name+"|"+tt.path, func(t *testing.T) {
			got, err := ParseFormat(tt.name, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	_, err := ParseFormat("parquet", "link.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"parquet"`)
}
