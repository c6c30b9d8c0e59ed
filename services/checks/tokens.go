package checks

import "strings"

const (
	userToken     = "$USER"
	userNameToken = "$USERNAME"
)

// substituteIdentity rewrites a pattern in a single pre-pass, replacing the
// unescaped $USERNAME and $USER tokens with the caller identity. The longer
// token is tried first so $USERNAME never decays into "$USER" + "NAME".
// Escape sequences are copied verbatim: \$USER stays \$USER, which the
// regexp engine reads as the literal character sequence, so the escaped form
// never matches the substituted value.
func substituteIdentity(pattern, username string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); {
		ch := pattern[i]
		if ch == '\\' && i+1 < len(pattern) {
			b.WriteByte(ch)
			b.WriteByte(pattern[i+1])
			i += 2
			continue
		}
		if ch == '$' {
			rest := pattern[i:]
			if strings.HasPrefix(rest, userNameToken) {
				b.WriteString(username)
				i += len(userNameToken)
				continue
			}
			if strings.HasPrefix(rest, userToken) {
				b.WriteString(username)
				i += len(userToken)
				continue
			}
		}
		b.WriteByte(ch)
		i++
	}
	return b.String()
}
