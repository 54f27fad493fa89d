package constants

import "strings"

// Format is the source document format handled by a reader.
type Format string

const (
	PDF  Format = "PDF"
	CSV  Format = "CSV"
	XLSX Format = "XLSX"
	XLS  Format = "XLS"
	HWP  Format = "HWP"
	HWPX Format = "HWPX"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves an extension (with or without the dot) to its Format.
// Unknown extensions map to "".
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "csv":
		return CSV
	case "xlsx":
		return XLSX
	case "xls":
		return XLS
	case "hwp":
		return HWP
	case "hwpx":
		return HWPX
	default:
		return ""
	}
}
