// Package exporter renders dashboard views as downloadable files. The Excel
// workbook mirrors the dashboard pages sheet by sheet; the CSV writer streams
// a single rollup table.
package exporter
