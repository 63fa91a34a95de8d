// Package sanitize normalizes translated text into the character set the
// PDF rendering font can draw. The embedded standard font only covers a
// base Latin glyph set, so every string is mapped through a fixed
// substitution table to its closest ASCII equivalent before it is measured
// or drawn; whatever remains outside the printable 7-bit range becomes a
// placeholder.
package sanitize

import "strings"

// Placeholder replaces characters that have no ASCII substitution.
const Placeholder = '?'

// substitutions maps known non-ASCII characters to their closest ASCII
// equivalent: Turkish and Western European letters, typographic quotes and
// dashes, and a few common symbols.
var substitutions = map[rune]string{
	// Turkish
	'ç': "c", 'Ç': "C",
	'ğ': "g", 'Ğ': "G",
	'ı': "i", 'İ': "I",
	'ö': "o", 'Ö': "O",
	'ş': "s", 'Ş': "S",
	'ü': "u", 'Ü': "U",

	// Western European accents
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'Á': "A", 'À': "A", 'Â': "A", 'Ä': "A", 'Ã': "A", 'Å': "A",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'Í': "I", 'Ì': "I", 'Î': "I", 'Ï': "I",
	'ó': "o", 'ò': "o", 'ô': "o", 'õ': "o",
	'Ó': "O", 'Ò': "O", 'Ô': "O", 'Õ': "O",
	'ú': "u", 'ù': "u", 'û': "u",
	'Ú': "U", 'Ù': "U", 'Û': "U",
	'ñ': "n", 'Ñ': "N",
	'ý': "y", 'Ý': "Y",
	'ß': "ss",

	// Typographic punctuation
	'‘': "'", '’': "'", '‚': "'", // curly single quotes
	'“': "\"", '”': "\"", '„': "\"", // curly double quotes
	'–': "-", '—': "-", // en/em dash
	'…': "...", // ellipsis
	'«': "\"", '»': "\"", // guillemets
	'•': "*", // bullet
	' ': " ", // no-break space

	// Symbols
	'™': "TM",  // trade mark
	'©': "(c)", // copyright
	'®': "(R)", // registered
	'°': " deg",
	'€': "EUR",
	'×': "x",
}

// Sanitize maps every character of s through the substitution table and
// replaces anything still outside printable ASCII with the placeholder.
// Newlines survive: the PDF layout segments text on them. Carriage returns
// are dropped and tabs become single spaces. The function is pure, total,
// and idempotent.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteRune('\n')
		case r == '\r':
			// dropped; CRLF collapses to the surviving LF
		case r == '\t':
			sb.WriteRune(' ')
		case r >= 0x20 && r <= 0x7E:
			sb.WriteRune(r)
		default:
			if repl, ok := substitutions[r]; ok {
				sb.WriteString(repl)
			} else {
				sb.WriteRune(Placeholder)
			}
		}
	}
	return sb.String()
}
