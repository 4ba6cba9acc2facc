package monitop

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
)

// ParseBackendURL parses raw, accepting bare host or host:port forms.
// explicitScheme reports whether raw named its scheme.
func ParseBackendURL(raw string) (u *url.URL, explicitScheme bool, err error) {
	raw = strings.TrimSpace(raw)
	explicitScheme = strings.Contains(raw, "://")
	if !explicitScheme {
		raw = "http://" + raw
	}
	u, err = url.Parse(raw)
	if err != nil {
		return nil, false, fmt.Errorf("invalid backend url %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return nil, false, fmt.Errorf("backend url %q has no host", raw)
	}
	return u, explicitScheme, nil
}

// NeedsProbe reports whether a parsed backend URL is missing its scheme or port
func NeedsProbe(u *url.URL, explicitScheme bool) bool {
	return !explicitScheme || u.Port() == ""
}

// DetectBackend tries URL variants of base until one answers GET /api/status
// with a 2xx status. It returns the first one that does.
func DetectBackend(ctx context.Context, base *url.URL, explicitScheme bool) (*url.URL, error) {
	for _, variant := range generateURLVariants(base, explicitScheme) {
		log.Printf("Trying monitor backend: %s", variant)
		probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout())
		_, err := NewClient(variant, 0, nil).Status(probeCtx)
		cancel()
		if err != nil {
			log.Printf("Backend check failed: %v", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		log.Printf("✓ Found monitor backend at %s", variant)
		return variant, nil
	}
	return nil, fmt.Errorf("no monitor backend answered at %s", base.Hostname())
}

// generateURLVariants creates the scheme and port combinations to try
func generateURLVariants(base *url.URL, explicitScheme bool) []*url.URL {
	hostname := base.Hostname()
	port := base.Port()
	path := strings.TrimSuffix(base.Path, "/")

	// Schemes to try: the one given, otherwise plain HTTP first
	schemes := []string{"http", "https"}
	if explicitScheme && base.Scheme == "https" {
		schemes = []string{"https", "http"}
	} else if explicitScheme {
		schemes = []string{base.Scheme}
	}

	// Ports to try: 8000 is the backend's default listen port
	ports := []string{"8000", "80", "443"}
	if port != "" {
		ports = []string{port}
	}

	var variants []*url.URL
	for _, scheme := range schemes {
		for _, p := range ports {
			variants = append(variants, &url.URL{
				Scheme: scheme,
				Host:   net.JoinHostPort(hostname, p),
				Path:   path,
			})
		}
	}
	return variants
}
