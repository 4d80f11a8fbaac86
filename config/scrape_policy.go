package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ScrapePolicyConfig restricts which hosts the scraper may fetch. An empty
// allow list admits every host that is not disallowed.
type ScrapePolicyConfig struct {
	Allow    []string `mapstructure:"allow" json:"allow"`
	Disallow []string `mapstructure:"disallow" json:"disallow"`
}

// Normalize cleans entries and removes duplicates.
func (c ScrapePolicyConfig) Normalize() ScrapePolicyConfig {
	return ScrapePolicyConfig{
		Allow:    sanitizeDomainList(c.Allow),
		Disallow: sanitizeDomainList(c.Disallow),
	}
}

// Validate ensures configured policy entries do not conflict.
func (c ScrapePolicyConfig) Validate() error {
	norm := c.Normalize()
	allow := make(map[string]struct{}, len(norm.Allow))
	for _, host := range norm.Allow {
		allow[host] = struct{}{}
	}
	for _, host := range norm.Disallow {
		if _, ok := allow[host]; ok {
			return fmt.Errorf("scrape policy conflict: host %q present in both allow and disallow lists", host)
		}
	}
	return nil
}

// Permits reports whether host (or any parent domain of it) may be scraped.
// Disallow entries win over allow entries.
func (c ScrapePolicyConfig) Permits(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	for _, d := range c.Disallow {
		if matchesDomain(host, d) {
			return false
		}
	}
	if len(c.Allow) == 0 {
		return true
	}
	for _, a := range c.Allow {
		if matchesDomain(host, a) {
			return true
		}
	}
	return false
}

func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func sanitizeDomainList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		host := normalizeHost(raw)
		if host == "" {
			continue
		}
		seen[host] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for host := range seen {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if u, err := url.Parse(value); err == nil && u.Host != "" {
			return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		}
	}
	return strings.TrimPrefix(value, "www.")
}
