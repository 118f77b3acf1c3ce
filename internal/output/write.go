package output

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ibeslink/internal/frame"
)

// WriteFile writes t to path in format f. Parent directories are created.
// CSV and XLSX output is staged in a temp file and renamed into place, so a
// failed run never leaves a partial file behind.
func WriteFile(ctx context.Context, path string, f Format, t *frame.Table) error {
	if path == "" {
		return eris.New("output: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "output: create directory")
	}

	switch f {
	case CSV, "":
		return writeAtomic(path, func(tmp *os.File) error {
			return WriteCSV(tmp, t)
		})
	case XLSX:
		return writeAtomic(path, func(tmp *os.File) error {
			return WriteXLSX(tmp, t)
		})
	case SQLite:
		return WriteSQLite(ctx, path, t)
	default:
		return eris.Errorf("output: unknown format %q", f)
	}
}

// WriteCSV writes a header row and one line per row. No index column is
// added; an empty table yields a header-only file.
func WriteCSV(w io.Writer, t *frame.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "output: csv header")
	}

	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			record[i] = frame.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "output: csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "output: csv flush")
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrap(err, "output: create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "output: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "output: rename to %s", path)
	}
	return nil
}
