package lexicon

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
)

const utf8BOM = "\ufeff"

// Table is the raw column view of a lexicon CSV: a header row followed by one phrase per cell.
// Columns may have different lengths.
type Table struct {
	Headers []string
	Columns [][]string
}

// Column returns the non-empty cells of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	for i, header := range t.Headers {
		if header == name {
			return t.Columns[i], true
		}
	}
	return nil, false
}

// SetColumn replaces the named column, or appends it when it does not exist yet.
func (t *Table) SetColumn(name string, values []string) {
	for i, header := range t.Headers {
		if header == name {
			t.Columns[i] = values
			return
		}
	}
	t.Headers = append(t.Headers, name)
	t.Columns = append(t.Columns, values)
}

// ReadTableFile reads the lexicon CSV at path.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable reads a lexicon CSV. Empty cells are dropped, so a short column does not produce empty phrases.
// Header names must be unique; columns with an empty header are ignored.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	} else if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	table := &Table{}
	index := make([]int, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			index[i] = -1
			continue
		}
		if seen[header] {
			return nil, fmt.Errorf("duplicate lexicon column %q", header)
		}
		seen[header] = true
		index[i] = len(table.Headers)
		table.Headers = append(table.Headers, header)
		table.Columns = append(table.Columns, []string{})
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i, cell := range row {
			if i >= len(index) || index[i] < 0 {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			table.Columns[index[i]] = append(table.Columns[index[i]], cell)
		}
	}
	return table, nil
}

// WriteTable writes t as CSV, padding short columns with empty cells.
func WriteTable(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}

	rows := 0
	for _, column := range t.Columns {
		if len(column) > rows {
			rows = len(column)
		}
	}

	row := make([]string, len(t.Headers))
	for i := 0; i < rows; i++ {
		for j, column := range t.Columns {
			row[j] = ""
			if i < len(column) {
				row[j] = column[i]
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTableFile replaces the file at path with t.
func WriteTableFile(path string, t *Table) error {
	return lib.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteTable(w, t)
	})
}
