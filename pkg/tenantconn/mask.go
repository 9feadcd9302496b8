package tenantconn

import "net/url"

// MaskLocation redacts the credentials portion of a location string so it
// can be logged safely. Location strings that do not parse as URLs are
// fully redacted rather than leaked.
func MaskLocation(location string) string {
	if location == "" {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return "[redacted]"
	}
	if u.User != nil {
		u.User = url.UserPassword("xxx", "xxx")
	}
	return u.Redacted()
}
