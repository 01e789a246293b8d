// Package validate holds the field normalization rules shared by every
// request surface. Each function is pure: it either returns the canonical
// form of the value or an error wrapping errs.ErrValidation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

var reservedUsernames = map[string]struct{}{
	"admin":   {},
	"root":    {},
	"support": {},
	"help":    {},
}

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9._]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Username lowercases and trims the name, then checks the account naming
// rules: 3-50 chars, letters/digits/dots/underscores only, no leading or
// trailing dot/underscore, not a reserved name.
func Username(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))

	if len(name) < 3 || len(name) > 50 {
		return "", fmt.Errorf("%w: username must be 3-50 characters", errs.ErrValidation)
	}
	if !usernameRe.MatchString(name) {
		return "", fmt.Errorf("%w: username can only contain letters, numbers, dots or underscores", errs.ErrValidation)
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		strings.HasSuffix(name, ".") || strings.HasSuffix(name, "_") {
		return "", fmt.Errorf("%w: username can't start or end with a dot or underscore", errs.ErrValidation)
	}
	if _, reserved := reservedUsernames[name]; reserved {
		return "", fmt.Errorf("%w: this username is reserved", errs.ErrValidation)
	}

	return name, nil
}

func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))

	if len(email) > 70 || !emailRe.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email address", errs.ErrValidation)
	}

	return email, nil
}

// Password enforces the account password policy without transforming the
// value; hashing is the caller's concern.
func Password(raw string) error {
	if len(raw) <= 8 || len(raw) >= 64 {
		return fmt.Errorf("%w: password must be between 9 and 63 characters", errs.ErrValidation)
	}

	var upper, lower, digit, special bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: password must contain an uppercase letter, a lowercase letter, a digit and a special character", errs.ErrValidation)
	}

	return nil
}

// CoinName trims the name and title-cases each word.
func CoinName(raw string) (string, error) {
	name := titleCase(strings.TrimSpace(raw))

	if name == "" || len(name) > 100 {
		return "", fmt.Errorf("%w: invalid coin name", errs.ErrValidation)
	}

	return name, nil
}

// CoinSymbol trims and uppercases the symbol; embedded whitespace is not
// allowed.
func CoinSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	if symbol == "" || len(symbol) > 100 || strings.ContainsAny(symbol, " \t") {
		return "", fmt.Errorf("%w: invalid coin symbol", errs.ErrValidation)
	}

	return symbol, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
