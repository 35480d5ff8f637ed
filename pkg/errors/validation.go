package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// Year bounds accepted by [ValidateYear].
const (
	MinYear = 1900
	MaxYear = 9999
)

// MaxPageSize bounds the number of bookings requested per source page.
const MaxPageSize = 10000

// maxIdentifierLength bounds booking and support identifiers.
const maxIdentifierLength = 128

// ValidateYear checks that year can be rendered as a calendar year.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return New(ErrCodeInvalidYear, "year %d out of range (%d-%d)", year, MinYear, MaxYear)
	}
	return nil
}

// ValidatePageSize checks a requested page size. Zero selects the source
// default and is accepted.
func ValidatePageSize(n int) error {
	if n < 0 || n > MaxPageSize {
		return New(ErrCodeInvalidInput, "page size %d out of range (0-%d)", n, MaxPageSize)
	}
	return nil
}

// ValidateIdentifier checks a booking or support identifier: not blank, at
// most 128 bytes, no control characters. kind names the identifier in the
// error message (e.g. "booking id").
func ValidateIdentifier(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIdentifierLength)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
	}
	return nil
}

// ValidateURL checks that rawURL parses, has a host and uses one of the
// given schemes.
//
//	errors.ValidateURL(uri, "mongodb", "mongodb+srv")
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return New(ErrCodeInvalidInput, "URL must use one of: %s", strings.Join(schemes, ", "))
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}
