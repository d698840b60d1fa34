// Package imageref turns user input into the image reference stored for a
// day's background.
package imageref

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mitchellh/go-homedir"
)

// MaxFileSize caps embedded files so the persisted blob stays small.
const MaxFileSize = 2 << 20

// ErrNotImage is returned when a local file is not an image.
var ErrNotImage = errors.New("not an image")

// Resolve passes URLs and data URIs through unchanged and embeds local files
// as base64 data URIs.
func Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty image reference")
	}
	if IsURL(ref) {
		return ref, nil
	}
	path, err := homedir.Expand(ref)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", ref, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("image %s is %d bytes, limit is %d", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%s: %w (%s)", path, ErrNotImage, mtype.String())
	}
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsURL reports whether ref is already a usable reference.
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

// Describe returns a short label for a stored reference. Anything that is
// not a URL or a data URI is shown as a placeholder.
func Describe(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(strings.ToLower(ref), "data:"):
		mime := strings.TrimPrefix(ref[:strings.IndexAny(ref+";", ";,")], "data:")
		return "embedded " + mime
	case IsURL(ref):
		return ref
	default:
		return "[invalid image]"
	}
}
