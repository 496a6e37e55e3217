// Package validate holds the shape checks applied to community names and
// request paths before any network I/O happens.
package validate

import "regexp"

var (
	communityName = regexp.MustCompile(`^/r/[A-Za-z0-9_-]+$`)
	imagePath     = regexp.MustCompile(`^/[A-Za-z0-9]+\.(jpg|gif|png)$`)
	pagePath      = regexp.MustCompile(`^/r/[A-Za-z0-9_-]+/page/[0-9]+\.json$`)
)

// IsValidCommunityName reports whether s looks like "/r/<name>"
func IsValidCommunityName(s string) bool {
	return communityName.MatchString(s)
}

// IsValidImagePath reports whether s is a direct download path such as "/abc123.jpg"
func IsValidImagePath(s string) bool {
	return imagePath.MatchString(s)
}

// IsValidPagePath reports whether s is a feed page path such as "/r/pics/page/0.json"
func IsValidPagePath(s string) bool {
	return pagePath.MatchString(s)
}
