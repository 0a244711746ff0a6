// Package image handles inline embedded-image payloads.
package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataURLScheme   = "data:image/"
	base64Separator = ";base64,"
)

var (
	ErrNotDataURL          = errors.New("not an embedded image payload")
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrMalformedPayload    = errors.New("malformed embedded image payload")
)

// extensionSuffix lists the image types we accept and their file
// suffixes.
var extensionSuffix = map[string]string{
	"jpeg":    ".jpg",
	"jpg":     ".jpg",
	"png":     ".png",
	"svg+xml": ".svg",
	"webp":    ".webp",
	"gif":     ".gif",
}

type Decoded struct {
	Data   []byte
	Suffix string
}

// IsDataURL reports whether the value is a self-describing embedded
// image of the form data:image/<ext>;base64,<data>. Values that are
// not data URLs are treated as opaque blob references by callers.
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, dataURLScheme)
}

// ParseDataURL decodes an embedded image payload into raw bytes plus a
// file suffix derived from the declared image type.
func ParseDataURL(value string) (Decoded, error) {
	if !IsDataURL(value) {
		return Decoded{}, ErrNotDataURL
	}

	header, encoded, found := strings.Cut(value, base64Separator)
	if !found {
		return Decoded{}, ErrMalformedPayload
	}

	ext := strings.TrimPrefix(header, dataURLScheme)
	suffix, ok := extensionSuffix[strings.ToLower(ext)]
	if !ok {
		return Decoded{}, fmt.Errorf("image type %q: %w", ext, ErrUnsupportedMimeType)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoding payload: %w", errors.Join(ErrMalformedPayload, err))
	}
	if len(data) == 0 {
		return Decoded{}, ErrMalformedPayload
	}

	return Decoded{Data: data, Suffix: suffix}, nil
}
