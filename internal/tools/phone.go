package tools

import (
	"errors"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{10,}$`)

var errBadPhone = errors.New("invalid phone number format")

// canonicalPhone strips common separators and validates the canonical form:
// optional +/1 prefix followed by at least ten digits.
func canonicalPhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	for _, sep := range []string{"-", " ", "(", ")", "."} {
		phone = strings.ReplaceAll(phone, sep, "")
	}
	if !phonePattern.MatchString(phone) {
		return "", errBadPhone
	}
	return phone, nil
}
