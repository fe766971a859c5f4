package pds

import "strings"

// parseAttribute scans one NAME = VALUE entry starting at pos and returns the
// attribute together with the position parsing should resume at. The function
// never fails: malformed input produces an attribute that does not pass
// Valid, which the tree builder then discards.
//
// Values normally end at the first newline. Two extensions look further
// ahead: a value opening with a double quote runs to the closing quote, which
// may be on a later line, and a value opening with a parenthesis runs to the
// matching close (PDS tuple values such as coordinate lists). In both cases
// parsing resumes immediately after the closing delimiter, not at the
// embedded newline.
func parseAttribute(sc Schema, input string, pos int) (*Node, int) {
	rest := input[pos:]
	nl := strings.IndexByte(rest, '\n')
	eq := strings.IndexByte(rest, '=')

	// No newline left: consume everything that remains.
	if nl < 0 {
		return attributeFromString(rest), len(input)
	}

	// No assignment on the first line: the line alone becomes a (necessarily
	// invalid) name-only attribute and parsing resumes at the next line.
	if eq < 0 || eq > nl {
		return attributeFromString(rest[:nl]), pos + nl + 1
	}

	// The character two past '=' decides the value form ("= X").
	if eq+2 < len(rest) {
		switch rest[eq+2] {
		case '"':
			open := strings.IndexByte(rest, '"')
			if closing := strings.IndexByte(rest[open+1:], '"'); closing >= 0 {
				end := open + 1 + closing + 1
				return attributeFromString(rest[:end]), pos + end
			}
		case '(':
			if closing := strings.IndexByte(rest, ')'); closing >= 0 {
				end := closing + 1
				return attributeFromString(rest[:end]), pos + end
			}
		}
		// An unterminated quote or tuple degrades to single-line handling.
	}

	return attributeFromString(rest[:nl]), pos + nl + 1
}

// attributeFromString splits one extracted span into an attribute. Both name
// and value are trimmed; quoted values additionally have interior whitespace
// runs (including the newlines of multi-line strings) collapsed to single
// spaces.
func attributeFromString(s string) *Node {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return newAttribute(strings.TrimSpace(s), "")
	}

	name := strings.TrimSpace(s[:eq])
	value := strings.TrimSpace(s[eq+1:])

	if strings.Contains(value, `"`) {
		value = collapseSpaces(value)
	}

	return newAttribute(name, value)
}

// collapseSpaces reduces every whitespace run to a single space and trims
// the ends
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
