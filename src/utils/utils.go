package utils

import (
	"net/url"
	"strings"
)

// -----------------------------------------------------------------------------

var credentialParams = []string{"api_key", "apikey", "key", "token", "access_token"}

// -----------------------------------------------------------------------------

// MaskAPIKey hides credential material embedded in an endpoint string so the
// endpoint can be logged or returned over the control API. Known credential
// query parameters are masked, and provider-style keys carried as the final
// path segment (wss://host/ws/v3/<project-id>) keep only their last 4 chars.
func MaskAPIKey(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}

	q := u.Query()
	changed := false
	for _, param := range credentialParams {
		if q.Has(param) {
			q.Set(param, mask(q.Get(param)))
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}

	segments := strings.Split(u.Path, "/")
	if last := segments[len(segments)-1]; looksLikeKey(last) {
		segments[len(segments)-1] = mask(last)
		u.Path = strings.Join(segments, "/")
	}

	return u.String()
}

// -----------------------------------------------------------------------------

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// -----------------------------------------------------------------------------

// looksLikeKey reports whether a path segment resembles an opaque credential:
// long, and made only of URL-safe token characters
func looksLikeKey(s string) bool {
	if len(s) < 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
