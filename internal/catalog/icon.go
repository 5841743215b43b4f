package catalog

import (
	"fmt"
	"strings"
)

const DefaultIconTemplate = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/%s.svg"

// IconURL fills template with symbol. The template must contain a single %s.
func IconURL(template, symbol string) string {
	if template == "" || !strings.Contains(template, "%s") {
		template = DefaultIconTemplate
	}
	return fmt.Sprintf(template, symbol)
}
