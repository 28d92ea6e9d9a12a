package services

import (
	"net/url"
	"strings"
)

// originKey reduces a request origin to a short site tag for the CRM's
// _source field, so the sales team can tell which property a lead came
// from.
func originKey(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch {
	case strings.Contains(host, "zenithroofingservices"):
		return "zenithroofingservices"
	case strings.Contains(host, "zenithroofingca"):
		return "zenithroofingca"
	case strings.HasSuffix(host, ".netlify.app"):
		return "preview"
	case strings.HasPrefix(host, "localhost"):
		return "localhost"
	}
	return host
}
