package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTabDecidedByHeader(t *testing.T) {
	t.Parallel()

	text := "title\tstatus\tsize\n" +
		"Biker Jacket, 90s\tReserved\tSize L\n"
	rows := Parse(text)

	require.Len(t, rows, 1)
	require.Equal(t, "Biker Jacket, 90s", rows[0].Fields["title"])
	require.Equal(t, "Reserved", rows[0].Fields["status"])
}

func TestParseCommaAndQuotes(t *testing.T) {
	t.Parallel()

	text := "title,status\r\n\"Velvet Slip\" , Available\r\n\"half,open\n"
	table := ParseTable(text)

	require.Equal(t, ',', table.Delimiter)
	require.Equal(t, []string{"title", "status"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "Velvet Slip", table.Rows[0].Fields["title"])
	require.Equal(t, "Available", table.Rows[0].Fields["status"])
	// A lone quote is not a pair and stays.
	require.Equal(t, "\"half", table.Rows[1].Fields["title"])
	require.Equal(t, "open", table.Rows[1].Fields["status"])
}

func TestParseImagesColumn(t *testing.T) {
	t.Parallel()

	text := "title\timage\timages\n" +
		"Knit\told.jpg\ta.jpg, b.jpg, c.jpg\n" +
		"Denim\td.jpg\t\n" +
		"Slip\t\t , s.jpg,,\n"
	rows := Parse(text)

	require.Len(t, rows, 3)
	require.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, rows[0].Images)
	require.Equal(t, "a.jpg", rows[0].Fields["image"])

	require.Nil(t, rows[1].Images)
	require.Equal(t, "d.jpg", rows[1].Fields["image"])

	require.Equal(t, []string{"s.jpg"}, rows[2].Images)
	require.Equal(t, "s.jpg", rows[2].Get("image"))
}

func TestParseSkipsBlankLinesAndPadsRows(t *testing.T) {
	t.Parallel()

	text := "a\tb\tc\n1\t2\n\n   \t \n4\t5\t6\t7\n"
	rows := Parse(text)

	require.Len(t, rows, 2)
	require.Equal(t, map[string]string{"a": "1", "b": "2", "c": ""}, rows[0].Fields)
	require.Equal(t, map[string]string{"a": "4", "b": "5", "c": "6"}, rows[1].Fields)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Parse(""))
	require.Empty(t, Parse("\n\n"))
	require.Empty(t, Parse("title\tstatus"))
	require.Empty(t, ParseTable("").Rows)
}

func TestRowsStopsEarly(t *testing.T) {
	t.Parallel()

	text := "n\n1\n2\n3\n"
	var seen []string
	for row := range Rows(text) {
		seen = append(seen, row.Fields["n"])
		if len(seen) == 2 {
			break
		}
	}
	require.Equal(t, []string{"1", "2"}, seen)
}

func TestParseRoundTripsFieldValues(t *testing.T) {
	t.Parallel()

	for _, delim := range []string{"\t", ","} {
		lines := []string{
			strings.Join([]string{"title", "status", "size"}, delim),
			strings.Join([]string{"Silk Floral Midi", "Available", "Size M"}, delim),
			strings.Join([]string{"Wool Cardigan", "Reserved", "Size L"}, delim),
		}
		table := ParseTable(strings.Join(lines, "\n"))

		for i, row := range table.Rows {
			values := make([]string, len(table.Headers))
			for j, h := range table.Headers {
				values[j] = row.Fields[h]
			}
			require.Equal(t, lines[i+1], strings.Join(values, delim))
		}
	}
}

func TestRowGetAliasesAndCase(t *testing.T) {
	t.Parallel()

	row := Row{Fields: map[string]string{"Name": "Coogi Knit", "title": "", "Image_URL": "k.jpg"}}
	require.Equal(t, "Coogi Knit", row.Get("title", "name"))
	require.Equal(t, "k.jpg", row.Get("image", "image_url"))
	require.Empty(t, row.Get("badge"))
}

func TestRowGetCaseOnlyHeadersFollowColumnOrder(t *testing.T) {
	t.Parallel()

	for range 50 {
		rows := Parse("TITLE\tTitle\nUpper\tMixed\n")
		require.Len(t, rows, 1)
		require.Equal(t, "Upper", rows[0].Get("title"))
		require.Equal(t, "Mixed", rows[0].Get("Title"))
	}

	row := Row{Fields: map[string]string{"TITLE": "Upper", "Title": "Mixed"}}
	require.Equal(t, "Upper", row.Get("title"))
}
