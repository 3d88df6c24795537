package wizard

import (
	"regexp"
	"strings"
)

// phonePattern accepts Indonesian mobile numbers in +62, 62 or 0 prefixed form.
var phonePattern = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,9}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// IsIndonesianMobile reports whether s is a valid mobile number.
func IsIndonesianMobile(s string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(s)))
}

// NormalizePhone rewrites +62 and 62 prefixes to a leading 0 and strips
// separators. Input that is not a phone number comes back trimmed only.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	compact := phoneSeparators.Replace(s)
	if !phonePattern.MatchString(compact) {
		return s
	}
	switch {
	case strings.HasPrefix(compact, "+62"):
		return "0" + compact[3:]
	case strings.HasPrefix(compact, "62"):
		return "0" + compact[2:]
	}
	return compact
}

func normalizePhoneValue(v any) any {
	if s, ok := v.(string); ok {
		return NormalizePhone(s)
	}
	return v
}
