package bridge

import "strings"

// Placeholders recognised in configurable format strings.
const (
	UsernamePlaceholder = "%username%"
	MessagePlaceholder  = "%message%"
	ChatPlaceholder     = "%chat%"
)

// htmlEscaper covers the characters Telegram's HTML parse mode treats
// specially inside text content.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes text for safe interpolation into an HTML-formatted
// Telegram message.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// expand substitutes the username and message placeholders in a template.
// Values are expected to be escaped by the caller where needed.
func expand(template, username, message string) string {
	out := strings.ReplaceAll(template, UsernamePlaceholder, username)
	return strings.ReplaceAll(out, MessagePlaceholder, message)
}
