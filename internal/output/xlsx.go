package output

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ibeslink/internal/frame"
)

// SheetName is the worksheet holding the link table.
const SheetName = "link"

// WriteXLSX writes t as a single-sheet workbook with a header row.
func WriteXLSX(w io.Writer, t *frame.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "output: xlsx add sheet")
	}

	header := sheet.AddRow()
	for _, c := range t.Columns {
		header.AddCell().SetString(c)
	}

	for _, r := range t.Rows {
		row := sheet.AddRow()
		for _, v := range r {
			cell := row.AddCell()
			switch x := v.(type) {
			case nil:
			case int64:
				cell.SetInt64(x)
			case float64:
				cell.SetFloat(x)
			case bool:
				cell.SetBool(x)
			default:
				cell.SetString(frame.Format(x))
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "output: xlsx write")
	}
	return nil
}
