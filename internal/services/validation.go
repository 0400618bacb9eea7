package services

import (
	"regexp"
	"strings"
)

var (
	// \s в RE2 только ASCII; юникодные пробелы (NBSP, em space, NEL) режем явно
	emailRe = regexp.MustCompile(`^[^@\s\p{Z}\x{85}\x{0b}\x{1c}-\x{1f}]+@[^@\s\p{Z}\x{85}\x{0b}\x{1c}-\x{1f}]+\.[a-zA-Z0-9]+$`)
	codeRe  = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidateEmail returns the trimmed email and whether it looks valid.
func ValidateEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, emailRe.MatchString(s)
}

func ValidateCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, codeRe.MatchString(s)
}
