package session

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var ErrNoFilename = errors.New("url has no usable file name")

// FilenameFromURL returns the unescaped last path segment of rawURL. Names
// that would escape the target directory, such as an encoded slash, are
// rejected.
func FilenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	base := path.Base(u.EscapedPath())
	name, err := url.PathUnescape(base)
	if err != nil {
		return "", fmt.Errorf("invalid url path %q: %w", base, err)
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, rawURL)
	}
	return name, nil
}
