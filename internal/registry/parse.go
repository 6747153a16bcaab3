package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/portfile/portfile/pkg/ports"
)

// CSV columns of interest, zero-based.
const (
	colName      = 0
	colPort      = 1
	colProto     = 2
	colDesc      = 3
	colReference = 8
)

// Parser reads the registry CSV and yields candidate entries.
type Parser struct{}

// Parse reads the CSV at path and returns entries in file order, with
// descriptions already cleaned. Rows are skipped when the service name is
// empty, the protocol is not tcp/udp, or the port field is a range or not a
// valid port number. Malformed rows are skipped, not errors.
func (p *Parser) Parse(path string) ([]ports.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	// The registry occasionally carries stray non-UTF-8 bytes; substitute
	// the replacement character rather than failing.
	reader := csv.NewReader(strings.NewReader(strings.ToValidUTF8(string(data), "�")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// Skip header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}

	var entries []ports.Entry
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read registry row: %w", err)
		}

		entry, ok := parseRow(row)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseRow converts one CSV row into an entry, applying the row filters.
func parseRow(row []string) (ports.Entry, bool) {
	if len(row) < 4 {
		return ports.Entry{}, false
	}

	name := strings.TrimSpace(row[colName])
	portField := strings.TrimSpace(row[colPort])
	proto := strings.ToLower(strings.TrimSpace(row[colProto]))
	desc := strings.TrimSpace(row[colDesc])
	reference := ""
	if len(row) > colReference {
		reference = strings.TrimSpace(row[colReference])
	}

	if name == "" {
		return ports.Entry{}, false
	}
	if proto != "tcp" && proto != "udp" {
		return ports.Entry{}, false
	}
	// Port ranges are not representable as single entries.
	if strings.Contains(portField, "-") {
		return ports.Entry{}, false
	}
	if !allDigits(portField) {
		return ports.Entry{}, false
	}
	port, err := strconv.Atoi(portField)
	if err != nil || port < 1 || port > 65535 {
		return ports.Entry{}, false
	}

	return ports.Entry{
		Name:        name,
		Port:        port,
		Proto:       proto,
		Description: CleanDescription(desc, reference),
	}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
