package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/portfile/portfile/internal/engine"
	"github.com/portfile/portfile/internal/output"
	"github.com/portfile/portfile/internal/portsfile"
	"github.com/portfile/portfile/internal/registry"
	"github.com/portfile/portfile/internal/srvcheck"
	"github.com/portfile/portfile/pkg/ports"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	output.Version = version

	rootCmd := newRootCmd()
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newSRVCmd())

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("portfile {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		silent  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "portfile [output]",
		Short: "Regenerate the ports.txt service registry file",
		Long: "Downloads the IANA service-names-port-numbers registry, normalizes and\n" +
			"deduplicates it, appends the custom entries, and writes a fixed-width\n" +
			"ports.txt reference file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := defaultOutputPath()
			if len(args) == 1 {
				outputPath = args[0]
			}

			// Respect NO_COLOR env var.
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				noColor = true
			}

			userAgent := fmt.Sprintf("portfile/%s (+https://github.com/portfile/portfile)", version)

			cfg := engine.Config{
				URL:        url,
				OutputPath: outputPath,
			}

			// Set up context with signal handling for clean Ctrl+C.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			go func() {
				<-sigCh
				fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
				cancel()
			}()

			stages := engine.Stages{
				Fetcher: &registry.Fetcher{URL: url, UserAgent: userAgent, Timeout: timeout},
				Parser:  &registry.Parser{},
				Writer:  &portsfile.Writer{},
			}

			progress := output.NewProgress(os.Stderr, silent)
			if !silent {
				output.WriteHeader(os.Stderr, noColor)
			}

			if _, err := engine.Run(ctx, cfg, stages, progress); err != nil {
				return err
			}

			progress.Complete()
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", registry.DefaultURL, "Registry CSV URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Download timeout")
	cmd.Flags().BoolVar(&silent, "silent", false, "Suppress progress output")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")

	return cmd
}

func newLookupCmd() *cobra.Command {
	var (
		file       string
		jsonOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <service|port|port/proto>",
		Short: "Search a generated ports file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = defaultOutputPath()
			}
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				noColor = true
			}

			entries, err := portsfile.ParseFile(file)
			if err != nil {
				return err
			}

			matches := filterEntries(entries, strings.TrimSpace(args[0]))

			if jsonOutput {
				return output.WriteJSON(os.Stdout, matches)
			}
			output.WriteTable(os.Stdout, matches, noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Ports file to search (default: the generate target)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output matches as JSON to stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")

	return cmd
}

func newSRVCmd() *cobra.Command {
	var (
		proto      string
		server     string
		file       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "srv <service> <domain>",
		Short: "Query SRV records for a service and cross-check the registered port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, domain := args[0], args[1]
			if proto != "tcp" && proto != "udp" {
				return fmt.Errorf("invalid --proto %q (tcp or udp)", proto)
			}
			if file == "" {
				file = defaultOutputPath()
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			result, err := srvcheck.Lookup(ctx, service, proto, domain, server)
			if err != nil {
				return err
			}

			if jsonOutput {
				return output.WriteJSON(os.Stdout, result)
			}

			if len(result.Targets) == 0 {
				fmt.Printf("No SRV records for %s\n", result.Name)
				return nil
			}

			progress := output.NewProgress(os.Stderr, false)
			registered := registeredPort(file, service, proto)
			for _, target := range result.Targets {
				fmt.Printf("%s -> %s:%d (priority %d, weight %d)\n",
					result.Name, target.Host, target.Port, target.Priority, target.Weight)
				if registered > 0 && target.Port != registered {
					progress.Warn(fmt.Sprintf("advertised port %d differs from registered %d/%s",
						target.Port, registered, proto))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&proto, "proto", "tcp", "Transport protocol (tcp or udp)")
	cmd.Flags().StringVar(&server, "server", "", "DNS server to query (default: resolv.conf)")
	cmd.Flags().StringVar(&file, "file", "", "Ports file for the cross-check")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output SRV records as JSON to stdout")

	return cmd
}

// filterEntries returns entries matching a service name (case-insensitive),
// a bare port number, or a port/proto pair.
func filterEntries(entries []ports.Entry, query string) []ports.Entry {
	var matches []ports.Entry

	if port, err := strconv.Atoi(query); err == nil {
		for _, e := range entries {
			if e.Port == port {
				matches = append(matches, e)
			}
		}
		return matches
	}

	if portStr, proto, ok := strings.Cut(query, "/"); ok {
		if port, err := strconv.Atoi(portStr); err == nil {
			proto = strings.ToLower(proto)
			for _, e := range entries {
				if e.Port == port && e.Proto == proto {
					matches = append(matches, e)
				}
			}
			return matches
		}
	}

	query = strings.ToLower(query)
	for _, e := range entries {
		if strings.ToLower(e.Name) == query {
			matches = append(matches, e)
		}
	}
	return matches
}

// registeredPort finds the port registered for a service/proto in the ports
// file, or 0 when the file is unreadable or the service is absent.
func registeredPort(file, service, proto string) int {
	entries, err := portsfile.ParseFile(file)
	if err != nil {
		return 0
	}
	service = strings.ToLower(service)
	for _, e := range entries {
		if strings.ToLower(e.Name) == service && e.Proto == proto {
			return e.Port
		}
	}
	return 0
}

// defaultOutputPath is ../etc/ports.txt relative to the executable, matching
// an installation layout of bin/ next to etc/.
func defaultOutputPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("etc", "ports.txt")
	}
	return filepath.Join(filepath.Dir(exe), "..", "etc", "ports.txt")
}
