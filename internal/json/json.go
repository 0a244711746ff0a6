// Package json decodes API request bodies with the strictness the
// endpoints expect: unknown fields and trailing data are errors.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeStrict reads a single JSON value from r into dst. Fields not
// present on dst and any content after the first value are rejected, so
// a mistyped field name fails loudly instead of being silently dropped.
func DecodeStrict(dst any, r io.Reader) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("request body holds more than one JSON value")
	}
	return nil
}
