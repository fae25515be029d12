// Package blob stores uploaded files and hands back the public URL they are
// served from.
package blob

import (
	"context"
	"errors"
	"io"
	"mime"
	"regexp"
	"strings"
)

// ErrInvalidName is returned for object names that could escape the store.
var ErrInvalidName = errors.New("blob: invalid object name")

// extensionRe matches subtypes that are safe as a file extension.
var extensionRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]*$`)

// Store accepts uploaded files.
type Store interface {
	// Put stores r under name and returns its public URL.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// ExtensionFromContentType derives a file extension from a declared MIME
// type: "image/png" yields "png", "image/svg+xml; charset=utf-8" yields
// "svg+xml". Malformed types and subtypes that are not plain extension
// characters yield "bin".
func ExtensionFromContentType(contentType string) string {
	// A malformed parameter list still returns the validated media type.
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "bin"
	}
	_, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || !extensionRe.MatchString(subtype) {
		return "bin"
	}
	return subtype
}

// validName rejects empty names and anything with a path component.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
