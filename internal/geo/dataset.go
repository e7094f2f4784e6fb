package geo

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Dataset is the bulk (code, name) reference table used for regional-code
// resolution. The file is loaded once, on first use.
type Dataset struct {
	path string

	once sync.Once
	rows []datasetRow
	err  error
}

type datasetRow struct {
	code     string
	nameNorm string
}

// NewDataset creates a lazily-loaded dataset reader for a CSV of
// code,name rows.
func NewDataset(path string) *Dataset {
	return &Dataset{path: path}
}

func (d *Dataset) load() {
	file, err := os.Open(d.path)
	if err != nil {
		d.err = fmt.Errorf("open region dataset: %w", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		d.err = fmt.Errorf("read region dataset: %w", err)
		return
	}

	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		code := strings.TrimSpace(record[0])
		name := NormalizeName(record[1])
		if code == "" || name == "" {
			continue
		}
		d.rows = append(d.rows, datasetRow{code: code, nameNorm: name})
	}
}

// FindCode scans for a regional code by normalized name: an exact match wins,
// otherwise the first containment match in either direction.
func (d *Dataset) FindCode(norm string) (string, bool, error) {
	d.once.Do(d.load)
	if d.err != nil {
		return "", false, d.err
	}
	if norm == "" {
		return "", false, nil
	}

	for _, row := range d.rows {
		if row.nameNorm == norm {
			return row.code, true, nil
		}
	}
	for _, row := range d.rows {
		if strings.Contains(row.nameNorm, norm) || strings.Contains(norm, row.nameNorm) {
			return row.code, true, nil
		}
	}
	return "", false, nil
}
