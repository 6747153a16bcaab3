package portsfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/portfile/portfile/pkg/ports"
)

// ParseLine reads one rendered ports.txt line back into an entry. Comment
// lines and lines that don't look like entries return ok=false.
func ParseLine(line string) (ports.Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ports.Entry{}, false
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return ports.Entry{}, false
	}

	name := fields[0]
	portStr, proto, ok := strings.Cut(fields[1], "/")
	if !ok {
		return ports.Entry{}, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ports.Entry{}, false
	}
	if proto != "tcp" && proto != "udp" {
		return ports.Entry{}, false
	}

	// Everything after the port/proto column is the description.
	desc := ""
	rest := trimmed[len(name):]
	if idx := strings.Index(rest, fields[1]); idx >= 0 {
		desc = strings.TrimSpace(rest[idx+len(fields[1]):])
	}

	return ports.Entry{Name: name, Port: port, Proto: proto, Description: desc}, true
}

// ParseFile reads a generated ports.txt back into entries, in file order.
// Custom entries are included; comment lines are skipped.
func ParseFile(path string) ([]ports.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ports file: %w", err)
	}
	defer f.Close()

	var entries []ports.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if e, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ports file: %w", err)
	}

	return entries, nil
}
