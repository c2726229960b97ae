package identity

import (
	"regexp"
	"strings"

	"chatsync/pkg/models"
)

// Sender fields arrive in whatever combination the backend happened to
// have: a contact name, a phone-shaped number, a raw transport address.
// Derive collapses them into one stable display identity so grouping and
// avatar lookups key on the same value no matter which fields were set.

// syntheticNameRe matches internal group-member identifiers that some
// backends leak through the name field (numeric JIDs). Such a "name" is
// treated as missing.
var syntheticNameRe = regexp.MustCompile(`^\d+@(g\.us|lid|c\.us|s\.whatsapp\.net)$`)

// phoneRe matches phone-number-shaped identifiers.
var phoneRe = regexp.MustCompile(`^\+?\d[\d\s()-]{4,}$`)

// Derive returns the display identity for a message's sender. Preference
// order: real name, phone-shaped number, raw address token.
func Derive(m models.Message) string {
	if name := strings.TrimSpace(m.SenderName); name != "" && !syntheticNameRe.MatchString(name) {
		return name
	}
	if num := strings.TrimSpace(m.SenderNumber); num != "" && phoneRe.MatchString(num) {
		return num
	}
	if addr := strings.TrimSpace(m.SenderAddr); addr != "" {
		if i := strings.IndexByte(addr, '@'); i > 0 {
			return addr[:i]
		}
		return addr
	}
	// last resort: whatever non-empty field is left
	if num := strings.TrimSpace(m.SenderNumber); num != "" {
		return num
	}
	return ""
}
