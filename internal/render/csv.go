package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// WriteCSV streams a table in RFC 4180 form.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MappingFileName names a mapping export after its two schema files.
func MappingFileName(source, target string) string {
	return fmt.Sprintf("mapping_%s_to_%s.csv", baseName(source), baseName(target))
}

func baseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
