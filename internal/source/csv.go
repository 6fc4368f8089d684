package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// CSVDir reads operations.csv, expenses.csv and users.csv from a directory.
// Each file starts with a header row naming its columns. A missing file
// yields an empty table.
type CSVDir struct {
	dir string
}

// NewCSVDir returns a CSVDir source rooted at dir.
func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

// Load implements Source.
func (c *CSVDir) Load(ctx context.Context) (*Snapshot, error) {
	byTable := make(map[string][]record, len(tables))
	for _, tbl := range tables {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "csv: load")
		}
		path := filepath.Join(c.dir, tbl.name+".csv")
		recs, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		byTable[tbl.name] = recs
	}

	snap, err := snapshotFromRecords(byTable)
	if err != nil {
		return nil, err
	}
	logLoaded("csv", snap)
	return snap, nil
}

// Close implements Source.
func (c *CSVDir) Close() error { return nil }

func readCSVFile(path string) ([]record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return readCSV(f, path)
}

func readCSV(r io.Reader, name string) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csv: parse %s", name)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	// Strip a UTF-8 BOM left by spreadsheet exports.
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xef\xbb\xbf" {
		header[0] = header[0][3:]
	}
	return recordsFromRows(header, rows[1:]), nil
}
