package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses comma or tab separated scorecards.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse parses CSV data and returns a ParsedScorecard.
func (p *CSVParser) Parse(data []byte) (*ParsedScorecard, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CSV data")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return parseRows(rows)
}

// detectDelimiter picks tab over comma when the first lines hold more tabs.
func detectDelimiter(data []byte) rune {
	lines := strings.SplitN(string(data), "\n", headerScanDepth+1)
	commas, tabs := 0, 0
	for i, line := range lines {
		if i == headerScanDepth {
			break
		}
		commas += strings.Count(line, ",")
		tabs += strings.Count(line, "\t")
	}
	if tabs > commas {
		return '\t'
	}
	return ','
}
