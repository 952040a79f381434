package render

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"spinescan/internal/metadata"
)

var tableHeaders = []string{"#", "Query", "Source", "Artist", "Title", "ID"}

// Table renders one row per match, and one placeholder row per query with
// no matches.
func Table(set metadata.ResultSet) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(tableHeaders))
	for i, h := range tableHeaders {
		header[i] = h
	}
	tw.AppendHeader(header)

	for i, entry := range set {
		index := strconv.Itoa(i + 1)
		if !entry.HasMatches() {
			tw.AppendRow(table.Row{index, entry.QueryText, "-", "", "", ""})
			continue
		}
		for _, match := range entry.Matches {
			tw.AppendRow(table.Row{index, entry.QueryText, match.Source, match.Artist, match.Title, match.ID})
		}
	}

	configs := make([]table.ColumnConfig, 0, len(tableHeaders))
	for i := range tableHeaders {
		align := text.AlignLeft
		if i == 0 {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AutoMerge:   i < 2,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
