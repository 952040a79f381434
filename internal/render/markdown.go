package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"spinescan/internal/metadata"
)

var titleCaser = cases.Title(language.English)

// Markdown renders every match as a level-three section. Queries nobody
// matched still get a section so the listing covers the whole image.
func Markdown(set metadata.ResultSet) string {
	var b strings.Builder
	for _, entry := range set {
		if !entry.HasMatches() {
			b.WriteString("### ")
			b.WriteString(entry.QueryText)
			b.WriteString("\n\n_No matches_\n\n")
			continue
		}
		for _, match := range entry.Matches {
			writeMatch(&b, entry.QueryText, match)
		}
	}
	return b.String()
}

func writeMatch(b *strings.Builder, query string, match metadata.Match) {
	b.WriteString("### [")
	b.WriteString(match.Source)
	b.WriteString("] ")
	b.WriteString(heading(match))
	b.WriteString("\n\n")
	if match.CoverArtURL != "" {
		b.WriteString("![Cover Art](")
		b.WriteString(match.CoverArtURL)
		b.WriteString(")\n\n")
	}
	b.WriteString("- **")
	b.WriteString(IDLabel(match.IDKey))
	b.WriteString(":** ")
	b.WriteString(match.ID)
	b.WriteString("\n- **Query:** ")
	b.WriteString(query)
	b.WriteString("\n\n")
}

func heading(match metadata.Match) string {
	artist := strings.TrimSpace(match.Artist)
	title := strings.TrimSpace(match.Title)
	switch {
	case artist != "" && title != "":
		return artist + " - " + title
	case title != "":
		return title
	case artist != "":
		return artist
	default:
		return "Unknown"
	}
}

// IDLabel turns an identifier key such as "spotify_id" into "Spotify ID".
func IDLabel(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	if len(words) == 0 {
		return "ID"
	}
	for i, word := range words {
		switch strings.ToLower(word) {
		case "id", "mbid", "isrc", "upc", "url":
			words[i] = strings.ToUpper(word)
		default:
			words[i] = titleCaser.String(word)
		}
	}
	return strings.Join(words, " ")
}
