// Package encoding decodes the free-text fields of OBJ files (object, group
// and material names) into UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names x/text does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// NameDecoder converts names from a source charset to UTF-8.
// The zero value passes names through unchanged.
type NameDecoder struct {
	charset string
	enc     encoding.Encoding
}

// NewNameDecoder returns a decoder for the given charset label
// ("utf-8", "euc-kr", "shift_jis", "windows-1252", "gbk", ...).
// An empty label means UTF-8.
func NewNameDecoder(charset string) (*NameDecoder, error) {
	label := strings.ToLower(strings.TrimSpace(charset))
	switch label {
	case "", "utf-8", "utf8":
		return &NameDecoder{charset: "utf-8"}, nil
	case "euc-kr", "euckr", "cp949":
		// common for Korean exporters, skip the index lookup
		return &NameDecoder{charset: "euc-kr", enc: korean.EUCKR}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, charset)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	return &NameDecoder{charset: name, enc: enc}, nil
}

// Charset returns the canonical charset name.
func (d *NameDecoder) Charset() string {
	if d == nil || d.charset == "" {
		return "utf-8"
	}
	return d.charset
}

// Decode converts s to UTF-8. ASCII input and names that fail to decode are
// returned as-is.
func (d *NameDecoder) Decode(s string) string {
	if d == nil || d.enc == nil || isASCII(s) {
		return s
	}
	result, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}

// Encode converts a UTF-8 name back to the source charset.
// Returns the original bytes if conversion fails.
func (d *NameDecoder) Encode(s string) []byte {
	if d == nil || d.enc == nil || isASCII(s) {
		return []byte(s)
	}
	result, _, err := transform.Bytes(d.enc.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
