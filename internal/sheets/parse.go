package sheets

import "strings"

// Member is one row of the club's member spreadsheet.
type Member struct {
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// ParseMembers extracts member rows from raw CSV text, in input order.
//
// The first non-blank line is treated as a header and skipped without
// inspection. A row is emitted only when it yields at least two fields and
// both name and rank are non-empty after trimming. Everything else is
// dropped silently; spreadsheet data routinely contains blank and partial
// rows and they are not worth an error.
func ParseMembers(csv string) []Member {
	members := []Member{}
	header := true

	for _, line := range strings.Split(csv, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		fields := splitFields(line)
		if len(fields) < 2 {
			continue
		}
		name, rank := fields[0], fields[1]
		if name == "" || rank == "" {
			continue
		}
		members = append(members, Member{Name: name, Rank: rank})
	}

	return members
}

// splitFields tokenizes one CSV line with a small state machine. A field is
// either a double-quoted span, which may contain commas and doubled quotes
// ("" unescapes to a literal quote), or a plain run up to the next comma.
// Fields are trimmed of surrounding whitespace.
func splitFields(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes:
			if c != '"' {
				buf.WriteByte(c)
			} else if i+1 < len(line) && line[i+1] == '"' {
				buf.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case c == '"':
			inQuotes = true
		case c == ',':
			fields = append(fields, strings.TrimSpace(buf.String()))
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(buf.String()))

	return fields
}
