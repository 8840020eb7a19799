package sms

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// NormalizePhone strips spaces and dashes and reports whether what is left
// is a dialable number. Every per-phone key (OTP, rate limit, user lookup)
// must go through it.
func NormalizePhone(phone string) (string, bool) {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	return phone, phonePattern.MatchString(phone)
}
