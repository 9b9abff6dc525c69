package bankimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRecords parses a headed CSV document into one map per data row, keyed
// by the trimmed header names. Empty and whitespace-only lines are skipped.
// Syntax errors, including rows whose field count differs from the header,
// are returned wrapped and are never silently dropped.
func ReadRecords(data []byte) ([]map[string]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	// Field counts are checked below so that whitespace-only lines can be
	// told apart from short rows.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse bank csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse bank csv: %w", err)
		}
		if isBlankRecord(fields) {
			continue
		}
		if len(fields) != len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("parse bank csv: %w", &csv.ParseError{StartLine: line, Line: line, Err: csv.ErrFieldCount})
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = strings.TrimSpace(fields[i])
		}
		records = append(records, row)
	}

	return records, nil
}

// isBlankRecord reports a line holding only spaces or tabs, which the
// tokenizer returns as a single empty field.
func isBlankRecord(fields []string) bool {
	return len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
}
