package constants

import "strings"

const (
	PDF  = "PDF"
	TXT  = "TXT"
	CSV  = "CSV"
	XLSX = "XLSX"
)

// ReportExtensions holds the default report file extensions picked up by batch and watch modes.
var ReportExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to one of the format constants, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	case "csv":
		return CSV
	case "xlsx":
		return XLSX
	}
	return ""
}
