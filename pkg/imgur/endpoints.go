package imgur

import (
	"strconv"

	"imgurr/pkg/errors"
	"imgurr/pkg/validate"
)

const (
	// DefaultFeedURL serves the per-community gallery pages
	DefaultFeedURL = "https://imgur.com"

	// DefaultImageURL serves the image binaries
	DefaultImageURL = "https://i.imgur.com"

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "imgurr/1.0 (+https://github.com/imgurr/imgurr)"
)

// PagePath returns the feed path for a page, e.g. "/r/pics/page/3.json"
func PagePath(community string, page int) (string, error) {
	if !validate.IsValidCommunityName(community) {
		return "", errors.New(errors.ErrorTypeInvalidName, "invalid community name %q", community)
	}
	path := community + "/page/" + strconv.Itoa(page) + ".json"
	if !validate.IsValidPagePath(path) {
		return "", errors.New(errors.ErrorTypeInvalidName, "invalid page path %q", path)
	}
	return path, nil
}

// ImagePath returns the direct download path for an image, e.g. "/abc123.jpg".
// The extension reported by the feed already includes its leading dot.
func ImagePath(img *Image) (string, error) {
	path := "/" + img.Hash + img.Ext
	if !validate.IsValidImagePath(path) {
		return "", errors.New(errors.ErrorTypeInvalidDescriptor, "invalid image path %q", path)
	}
	return path, nil
}

// FileName returns the local file name for an image
func FileName(img *Image) string {
	return img.Hash + img.Ext
}
