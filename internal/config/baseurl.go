package config

import (
	"net/url"
	"strings"
)

const (
	// ProductionDomain is the domain the console is served from in production
	ProductionDomain = "helloydz.com"

	// ProductionAPIURL is the API behind ProductionDomain
	ProductionAPIURL = "https://api.helloydz.com/api"

	// LocalAPIURL is the development API, also the last-resort fallback
	LocalAPIURL = "http://localhost:8000/api"
)

// ResolveBaseURL picks the remote API base URL.
// Priority: explicit override, then a rule derived from the console's host
// name (a bare host or a full URL), then LocalAPIURL.
func ResolveBaseURL(override, host string) string {
	if override = strings.TrimSpace(override); override != "" {
		return strings.TrimSuffix(override, "/")
	}

	scheme, hostname := splitHost(host)

	switch {
	case hostname == "":
		return LocalAPIURL
	case hostname == ProductionDomain || hostname == "www."+ProductionDomain:
		return ProductionAPIURL
	case hostname == "localhost" || hostname == "127.0.0.1":
		return LocalAPIURL
	case strings.Contains(hostname, ProductionDomain):
		// staging.helloydz.com -> api.staging.helloydz.com
		apiHost := "api." + strings.TrimPrefix(hostname, "www.")
		return scheme + "://" + apiHost + "/api"
	}

	return LocalAPIURL
}

// splitHost accepts "host", "host:port" or a full URL and returns the scheme
// (https when absent) and the lowercase host name without port
func splitHost(host string) (string, string) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "https", ""
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "https", ""
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme, strings.ToLower(u.Hostname())
}
