package domain

import "strings"

// SplitRow splits one delimited line into fields. A double quote toggles the
// quoted state; inside quotes the delimiter is literal and a doubled quote is a
// literal quote. Fields are trimmed of surrounding whitespace.
func SplitRow(line string, delim rune) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			field.WriteRune('"')
			i++
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(field.String()))
}

// Lines splits text into records on LF or CRLF, dropping a leading byte order
// mark. A line break inside a quoted field belongs to the field, so one record
// may span several physical lines.
func Lines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		records  []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				records = append(records, text[start:i])
				start = i + 1
			}
		}
	}
	return append(records, text[start:])
}
