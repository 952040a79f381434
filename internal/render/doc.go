// Package render turns a ResultSet into the output formats spinescan offers:
// the canonical JSON document, the Markdown listing, a terminal table, and an
// XLSX workbook.
package render
