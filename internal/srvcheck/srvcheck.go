// Package srvcheck resolves DNS SRV records for a registered service name so
// a deployment's advertised port can be compared against the registry entry.
package srvcheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const (
	queryTimeout = 5 * time.Second
	resolvConf   = "/etc/resolv.conf"
	fallbackDNS  = "8.8.8.8"
	dnsPort      = "53"
)

// Target is one SRV record target.
type Target struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Priority uint16 `json:"priority"`
	Weight   uint16 `json:"weight"`
}

// Result holds the SRV records found for a service/proto/domain triple.
type Result struct {
	Service string   `json:"service"`
	Proto   string   `json:"proto"`
	Domain  string   `json:"domain"`
	Name    string   `json:"name"`
	Targets []Target `json:"targets"`
}

// QuestionName builds the SRV owner name, e.g. "_sip._udp.example.com.".
func QuestionName(service, proto, domain string) string {
	return dns.Fqdn(fmt.Sprintf("_%s._%s.%s", service, proto, domain))
}

// Lookup queries SRV records for the service under domain. server may be a
// bare host or host:port; when empty the first nameserver from
// /etc/resolv.conf is used.
func Lookup(ctx context.Context, service, proto, domain, server string) (*Result, error) {
	if server == "" {
		server = systemNameserver()
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, dnsPort)
	}

	name := QuestionName(service, proto, domain)
	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeSRV)

	client := &dns.Client{Timeout: queryTimeout}
	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("SRV query %s against %s: %w", name, server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("SRV query %s: %s", name, dns.RcodeToString[resp.Rcode])
	}

	result := &Result{
		Service: service,
		Proto:   proto,
		Domain:  domain,
		Name:    name,
	}
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		result.Targets = append(result.Targets, Target{
			Host:     srv.Target,
			Port:     int(srv.Port),
			Priority: srv.Priority,
			Weight:   srv.Weight,
		})
	}

	return result, nil
}

// systemNameserver returns the first resolv.conf nameserver, falling back to
// a public resolver when the file is unreadable.
func systemNameserver() string {
	conf, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(conf.Servers) == 0 {
		return fallbackDNS
	}
	return conf.Servers[0]
}
