package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// ExportURL turns a spreadsheet edit link into its CSV export link. Other
// URLs are returned unchanged.
func ExportURL(sheetURL string) string {
	return strings.Replace(sheetURL, "/edit#gid=", "/export?format=csv&gid=", 1)
}

// table is a CSV document addressed by header name.
type table struct {
	columns map[string]int
	rows    [][]string
	skipped int
}

// readTable reads a CSV document with a header line. Lines that cannot be
// parsed or have fewer fields than the header are skipped.
func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	t := &table{columns: make(map[string]int, len(header))}
	for i, h := range header {
		t.columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.skipped++
			log.Printf("Skipping malformed CSV line %d: %v", line, err)
			continue
		}
		if len(rec) < len(header) {
			t.skipped++
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func (t *table) get(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) float(row []string, column string) (float64, error) {
	s := t.get(row, column)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
