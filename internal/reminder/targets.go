package reminder

import (
	"fmt"
	"regexp"
	"strings"
)

// targetSeparator joins recipients in the target_wa field.
const targetSeparator = ","

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	phonePattern       = regexp.MustCompile(`^\d{6,15}$`)
	legacyGroupPattern = regexp.MustCompile(`^\d+-\d+(@g\.us)?$`)
	jidPattern         = regexp.MustCompile(`@(s\.whatsapp\.net|g\.us|broadcast)$`)
)

// IsValidTarget reports whether s looks like a phone number, a legacy group id
// or a WhatsApp JID.
func IsValidTarget(s string) bool {
	if s == "" {
		return false
	}
	return phonePattern.MatchString(s) ||
		legacyGroupPattern.MatchString(s) ||
		jidPattern.MatchString(s)
}

// IsGroup reports whether the target addresses a group chat.
func IsGroup(s string) bool {
	return strings.HasSuffix(s, "@g.us") || legacyGroupPattern.MatchString(s)
}

// SplitTargets splits a comma-joined target list, trimming whitespace and
// dropping empty entries.
func SplitTargets(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, targetSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeTargets flattens, de-duplicates and validates recipients, returning
// the comma-joined form expected by the API. Each input may itself be a
// comma-separated list. No targets yields "" (deliver to self).
func NormalizeTargets(inputs []string) (string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, in := range inputs {
		for _, t := range SplitTargets(in) {
			if seen[t] {
				continue
			}
			if !IsValidTarget(t) {
				return "", &ValidationError{Field: "target", Reason: fmt.Sprintf("invalid target %q", t)}
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return strings.Join(out, targetSeparator), nil
}
