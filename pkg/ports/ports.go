// Package ports defines the service/port entry model shared across the
// portfile pipeline, plus the custom entries appended to every generated file.
package ports

import (
	"fmt"
	"sort"
)

// Entry is a single service-name/port/protocol record.
type Entry struct {
	Name        string `json:"name"`
	Port        int    `json:"port"`
	Proto       string `json:"proto"`
	Description string `json:"description,omitempty"`
}

// Key identifies an entry for deduplication. Description is not part of
// identity.
type Key struct {
	Name  string
	Port  int
	Proto string
}

// Key returns the entry's deduplication key.
func (e Entry) Key() Key {
	return Key{Name: e.Name, Port: e.Port, Proto: e.Proto}
}

// PortProto renders the port/protocol pair, e.g. "80/tcp".
func (e Entry) PortProto() string {
	return fmt.Sprintf("%d/%s", e.Port, e.Proto)
}

// protoRank orders tcp before udp for sorting.
func protoRank(proto string) int {
	if proto == "tcp" {
		return 0
	}
	return 1
}

// Sort orders entries by port ascending, then tcp before udp, then service
// name. The sort is stable so entries sharing all three key components keep
// their original relative order.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		if ra, rb := protoRank(a.Proto), protoRank(b.Proto); ra != rb {
			return ra < rb
		}
		return a.Name < b.Name
	})
}

// Dedupe walks entries in order and keeps the first occurrence of each
// (name, port, proto) key.
func Dedupe(entries []Entry) []Entry {
	seen := make(map[Key]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		k := e.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
