package source

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSX reads a workbook with one sheet per table: operations, expenses and
// users. The first row of each sheet is the header. A missing sheet yields
// an empty table.
type XLSX struct {
	path string
}

// NewXLSX returns an XLSX source for the workbook at path.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

// Load implements Source.
func (x *XLSX) Load(ctx context.Context) (*Snapshot, error) {
	f, err := xlsx.OpenFile(x.path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", x.path)
	}

	byTable := make(map[string][]record, len(tables))
	for _, tbl := range tables {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "xlsx: context cancelled")
		}
		sheet, ok := getSheet(f, tbl.name)
		if !ok || len(sheet.Rows) == 0 {
			continue
		}
		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			rows = append(rows, rowToStrings(row))
		}
		byTable[tbl.name] = recordsFromRows(rows[0], rows[1:])
	}

	snap, err := snapshotFromRecords(byTable)
	if err != nil {
		return nil, err
	}
	logLoaded("xlsx", snap)
	return snap, nil
}

// Close implements Source.
func (x *XLSX) Close() error { return nil }

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, bool) {
	sheet, ok := f.Sheet[name]
	return sheet, ok
}

// rowToStrings returns raw cell values. Dates stay Excel serials and numbers
// stay unformatted; parseDate and parseNumber handle both.
func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.Value
	}
	return cells
}
