package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVOptions controls CSV encoding and decoding. The zero value uses a
// comma and no header.
type CSVOptions struct {
	Header    []string
	Separator rune
}

func (o CSVOptions) separator() rune {
	if o.Separator == 0 {
		return ','
	}
	return o.Separator
}

// CSV encodes rows, preceded by opts.Header when it is set.
func (e *Exporter) CSV(rows [][]string, opts CSVOptions) (int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = opts.separator()

	if len(opts.Header) > 0 {
		if err := w.Write(opts.Header); err != nil {
			return 0, fmt.Errorf("CSV encoding error: %w", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("CSV encoding error: %w", err)
	}
	return e.save(buf.Bytes())
}

// CSV decodes all records.
func (i *Importer) CSV(opts CSVOptions) ([][]string, error) {
	data, err := i.src.Get()
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = opts.separator()
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV parse error: %w", err)
	}
	return records, nil
}

// CSVRecords decodes CSV whose first row is a header into one map per row.
// Rows shorter than the header leave the missing columns out.
func (i *Importer) CSVRecords(opts CSVOptions) ([]map[string]string, error) {
	records, err := i.CSV(opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
