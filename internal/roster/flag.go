package roster

import (
	"strings"

	"golang.org/x/text/language"
)

const worldFlag = "🌎"

// Flag converts a member's country code into an emoji flag. Unknown codes
// yield an empty string.
func Flag(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return ""
	}
	if strings.EqualFold(country, "world") {
		return worldFlag
	}

	region, err := language.ParseRegion(strings.ToUpper(country))
	if err != nil || !region.IsCountry() {
		return ""
	}

	code := region.String()
	if len(code) != 2 {
		return ""
	}

	var b strings.Builder
	for _, r := range code {
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
