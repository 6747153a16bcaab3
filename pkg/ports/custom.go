package ports

import (
	"bufio"
	"embed"
	"strconv"
	"strings"
)

//go:embed custom.txt
var customFS embed.FS

// Custom returns the hand-maintained entries appended to every generated
// file after the IANA set. Order matches the embedded file and is preserved
// by the writer; these are never sorted or deduplicated against the main set.
func Custom() []Entry {
	data, err := customFS.ReadFile("custom.txt")
	if err != nil {
		return nil
	}

	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: name port/proto
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		portStr, proto, ok := strings.Cut(fields[1], "/")
		if !ok {
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: fields[0], Port: port, Proto: proto})
	}
	return entries
}
