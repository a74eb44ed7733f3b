package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to a single line of plain text. Entities are decoded,
// tags stripped and runs of whitespace collapsed, so plain text passes through
// unchanged apart from spacing.
func ToText(s string) string {
	return strings.Join(strings.Fields(html2text.HTML2Text(s)), " ")
}
