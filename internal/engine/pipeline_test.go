package engine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/portfile/portfile/internal/engine"
	"github.com/portfile/portfile/internal/portsfile"
	"github.com/portfile/portfile/internal/registry"
)

type discardProgress struct{}

func (discardProgress) Stage(num, total int, msg string) {}
func (discardProgress) Detail(msg string)                {}
func (discardProgress) Warn(msg string)                  {}

const registryCSV = `Service Name,Port Number,Transport Protocol,Description,Assignee,Contact,Registration Date,Modification Date,Reference
http,80,tcp,World Wide Web HTTP,,,,,[RFC9110]
blocks,1024-2048,tcp,A port range,,,,,
ssh,22,tcp,The Secure Shell (SSH) Protocol,,,,,[RFC4253]
http,80,tcp,Duplicate row,,,,,
domain,53,udp,Domain Name Server,,,,,
domain,53,tcp,Domain Name Server,,,,,
`

// End-to-end: fake registry server through to the written file.
func TestPipeline_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(registryCSV))
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "ports.txt")
	cfg := engine.Config{URL: srv.URL, OutputPath: outPath}
	stages := engine.Stages{
		Fetcher: &registry.Fetcher{URL: srv.URL, UserAgent: "portfile-test"},
		Parser:  &registry.Parser{},
		Writer:  &portsfile.Writer{},
	}

	result, err := engine.Run(context.Background(), cfg, stages, discardProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 6 data rows: one range excluded, one duplicate collapsed.
	if result.Summary.ParsedEntries != 5 {
		t.Errorf("parsed = %d, want 5", result.Summary.ParsedEntries)
	}
	if result.Summary.UniqueEntries != 4 {
		t.Errorf("unique = %d, want 4", result.Summary.UniqueEntries)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	// Exact rendering of the http row, RFC appended.
	wantLine := "http              80/tcp      World Wide Web HTTP (RFC 9110)"
	if !strings.Contains(content, wantLine+"\n") {
		t.Errorf("missing line %q in:\n%s", wantLine, content)
	}

	// Port ranges are excluded entirely.
	if strings.Contains(content, "1024-2048") || strings.Contains(content, "blocks") {
		t.Errorf("range row leaked into output:\n%s", content)
	}

	// Entries sorted by port, tcp before udp.
	var dataLines []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			dataLines = append(dataLines, line)
		}
	}
	order := []string{"ssh", "domain            53/tcp", "domain            53/udp", "http"}
	for i, prefix := range order {
		if !strings.HasPrefix(dataLines[i], prefix) {
			t.Errorf("dataLines[%d] = %q, want prefix %q", i, dataLines[i], prefix)
		}
	}

	// Custom entries follow the marker, in fixed order.
	markerIdx := strings.Index(content, portsfile.CustomMarker)
	if markerIdx == -1 {
		t.Fatalf("missing custom marker:\n%s", content)
	}
	tail := content[markerIdx:]
	for _, custom := range []string{"pcanywhere\t5631/tcp", "winvnc\t5900/tcp", "quake3\t27960/udp"} {
		if !strings.Contains(tail, custom) {
			t.Errorf("custom entry %q missing after marker", custom)
		}
	}
}

func TestPipeline_FetchFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "ports.txt")
	cfg := engine.Config{URL: srv.URL, OutputPath: outPath}
	stages := engine.Stages{
		Fetcher: &registry.Fetcher{URL: srv.URL},
		Parser:  &registry.Parser{},
		Writer:  &portsfile.Writer{},
	}

	if _, err := engine.Run(context.Background(), cfg, stages, discardProgress{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("output file created despite fetch failure")
	}
}
