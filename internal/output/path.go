// Package output writes link tables to files, terminals and PostgreSQL.
package output

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	CSV    Format = "csv"
	XLSX   Format = "xlsx"
	SQLite Format = "sqlite"
)

// ResolvePath anchors a relative path at baseDir. Absolute paths and an
// empty baseDir leave path unchanged.
func ResolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ParseFormat returns the format named by name, or the one implied by the
// extension of path when name is empty. Unknown extensions default to CSV.
func ParseFormat(name, path string) (Format, error) {
	name = cases.Fold().String(strings.TrimSpace(name))
	if name == "" {
		switch cases.Fold().String(filepath.Ext(path)) {
		case ".xlsx":
			return XLSX, nil
		case ".db", ".sqlite", ".sqlite3":
			return SQLite, nil
		default:
			return CSV, nil
		}
	}

	switch f := Format(name); f {
	case CSV, XLSX, SQLite:
		return f, nil
	default:
		return "", eris.Errorf("output: unknown format %q (want csv, xlsx or sqlite)", name)
	}
}
