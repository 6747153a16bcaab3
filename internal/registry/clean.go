package registry

import (
	"fmt"
	"regexp"
	"strings"
)

// rfcRefPattern extracts RFC numbers from bracketed reference tokens like
// "[RFC1234]".
var rfcRefPattern = regexp.MustCompile(`\[RFC(\d+)\]`)

// translit maps the accented and typographic characters that appear in
// registry descriptions to ASCII equivalents. Runes outside this table are
// left unchanged.
var translit = strings.NewReplacer(
	"É", "E", "é", "e", "È", "E", "è", "e",
	"ñ", "n", "Ñ", "N",
	"ü", "u", "Ü", "U", "ú", "u", "Ú", "U",
	"ö", "o", "Ö", "O", "ó", "o", "Ó", "O",
	"ä", "a", "Ä", "A", "á", "a", "Á", "A",
	"í", "i", "Í", "I",
	"–", "-", "—", "-",
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// CleanDescription normalizes a raw registry description: trims whitespace,
// strips a single wrapping pair of double quotes, appends RFC numbers found
// in the reference column when not already mentioned, and transliterates
// accented characters to ASCII.
func CleanDescription(desc, reference string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}

	if len(desc) >= 2 && strings.HasPrefix(desc, `"`) && strings.HasSuffix(desc, `"`) {
		desc = desc[1 : len(desc)-1]
	}

	if reference != "" {
		for _, m := range rfcRefPattern.FindAllStringSubmatch(reference, -1) {
			num := m[1]
			// No trailing boundary: "RFC 1234" in the description counts
			// as mentioning RFC 123 as well.
			present := regexp.MustCompile(`(?i)RFC ?` + num)
			if !present.MatchString(desc) {
				desc = fmt.Sprintf("%s (RFC %s)", desc, num)
			}
		}
	}

	return translit.Replace(desc)
}
