package catalogue

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/poiesic/tessera/core"
)

// csvHeader is the canonical eight-column layout, preceded by an explicit
// index column. Vectors are not persisted here; they live in the vector
// cache and in the exported index.
var csvHeader = []string{"", "record_id", "names", "description", "taxonomy", "img_loc", "img_name", "img_path", "downloaded"}

// SaveCSV persists the canonical table to path.
func (c *Collection) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for i := range c.records {
		record := &c.records[i]
		row := []string{
			strconv.Itoa(i),
			record.RecordID,
			record.Names,
			record.Description,
			record.Taxonomy,
			record.ImgLoc,
			record.ImgName,
			record.ImgPath,
			strconv.FormatBool(record.Downloaded),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	c.logger.Info("saved csv", "path", path, "records", len(c.records))
	return nil
}

// LoadCSV replaces the working table with the contents of a previously
// saved canonical CSV. Downloaded is recomputed against the current cache
// scan, not trusted from the file.
func (c *Collection) LoadCSV(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"record_id", "description", "img_name"} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrMalformedCSV, required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var records []core.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading csv row: %w", err)
		}

		records = append(records, core.Record{
			RecordID:    field(row, "record_id"),
			Names:       field(row, "names"),
			Description: field(row, "description"),
			Taxonomy:    field(row, "taxonomy"),
			ImgLoc:      field(row, "img_loc"),
			ImgName:     field(row, "img_name"),
			ImgPath:     field(row, "img_path"),
		})
	}

	if _, err := c.ScanImages(); err != nil {
		return err
	}
	c.SetRecords(records)
	c.logger.Info("loaded csv", "path", path, "records", len(records))
	return nil
}
