package feed

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	driveHost      = "drive.google.com"
	thumbnailWidth = "w1000"
)

var (
	reDrivePath  = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)
	reDriveQuery = regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`)
)

// driveFileID extracts the file id from a Drive share link of the form
// .../d/<id>/... or ...?id=<id>.
func driveFileID(raw string) (string, bool) {
	if !strings.Contains(raw, driveHost) {
		return "", false
	}
	if m := reDrivePath.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := reDriveQuery.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

// RewriteImageURL turns a Drive share link into a direct thumbnail URL that
// can be used as an <img> source. Other URLs are returned unchanged.
func RewriteImageURL(raw string) string {
	id, ok := driveFileID(raw)
	if !ok {
		return raw
	}
	return "https://" + driveHost + "/thumbnail?id=" + url.QueryEscape(id) + "&sz=" + thumbnailWidth
}

// FallbackImageURL returns the export-download form of a Drive image, used
// once when the thumbnail fails to load. Non-Drive URLs yield "".
func FallbackImageURL(raw string) string {
	id, ok := driveFileID(raw)
	if !ok {
		return ""
	}
	return "https://" + driveHost + "/uc?export=view&id=" + url.QueryEscape(id)
}
