// Package feed reads the published spreadsheet feeds that overlay the
// storefront's product and community lists.
//
// The parser is deliberately simple: one header line decides the delimiter
// (tab when the header contains one, comma otherwise), every field is trimmed
// and loses one pair of surrounding double quotes. Escaped quotes and
// delimiters embedded inside quoted fields are not supported; a comma-delimited
// feed therefore cannot carry a multi-value images column.
package feed

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// ImagesColumn is the reserved header holding a comma-joined image list.
const ImagesColumn = "images"

// Row is one data record keyed by header. Images holds the parsed images
// column; when it is non-empty Fields["image"] is set to its first element.
// Headers keeps the source column order.
type Row struct {
	Fields  map[string]string
	Images  []string
	Headers []string
}

// Get returns the first non-empty value among keys. Keys match headers
// exactly first, then case-insensitively in column order.
func (r Row) Get(keys ...string) string {
	headers := r.Headers
	if headers == nil {
		headers = slices.Sorted(maps.Keys(r.Fields))
	}
	for _, key := range keys {
		if v := r.Fields[key]; v != "" {
			return v
		}
		for _, header := range headers {
			if v := r.Fields[header]; v != "" && strings.EqualFold(header, key) {
				return v
			}
		}
	}
	return ""
}

// Table is an eagerly parsed feed.
type Table struct {
	Headers   []string
	Delimiter rune
	Rows      []Row
}

// DetectDelimiter decides the delimiter from the header line alone.
func DetectDelimiter(header string) rune {
	if strings.ContainsRune(header, '\t') {
		return '\t'
	}
	return ','
}

// Rows lazily yields the data rows of text in source order.
// Empty text yields nothing. Parsing never fails.
func Rows(text string) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		headers, delim, rest, ok := header(text)
		if !ok {
			return
		}
		for rest != "" {
			var line string
			line, rest, _ = strings.Cut(rest, "\n")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(buildRow(headers, splitFields(line, delim))) {
				return
			}
		}
	}
}

// Parse collects every row of text.
func Parse(text string) []Row {
	var out []Row
	for row := range Rows(text) {
		out = append(out, row)
	}
	return out
}

// ParseTable parses text and keeps the header order and delimiter alongside the rows.
func ParseTable(text string) Table {
	headers, delim, _, ok := header(text)
	if !ok {
		return Table{Delimiter: ','}
	}
	return Table{Headers: headers, Delimiter: delim, Rows: Parse(text)}
}

func header(text string) (headers []string, delim rune, rest string, ok bool) {
	if text == "" {
		return nil, ',', "", false
	}
	line, rest, _ := strings.Cut(text, "\n")
	line = strings.TrimPrefix(line, "\ufeff")
	if strings.TrimSpace(line) == "" && strings.TrimSpace(rest) == "" {
		return nil, ',', "", false
	}
	delim = DetectDelimiter(line)
	return splitFields(line, delim), delim, rest, true
}

func splitFields(line string, delim rune) []string {
	parts := strings.Split(line, string(delim))
	for i, p := range parts {
		parts[i] = cleanField(p)
	}
	return parts
}

func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return v
}

func buildRow(headers, values []string) Row {
	row := Row{Fields: make(map[string]string, len(headers)), Headers: headers}
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		row.Fields[h] = v
	}
	for _, h := range headers {
		if !strings.EqualFold(h, ImagesColumn) {
			continue
		}
		if row.Images = splitImages(row.Fields[h]); len(row.Images) > 0 {
			row.Fields["image"] = row.Images[0]
		}
		break
	}
	return row
}

func splitImages(v string) []string {
	var out []string
	for _, piece := range strings.Split(v, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
