package constants

import "strings"

const (
	PDF = "PDF"
	TXT = "TXT"
)

// FileTypes holds the document formats the scanner can read.
var FileTypes = []string{PDF, TXT}

// AllowedExtensions holds the default allowed file extensions for document intake.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to one of FileTypes, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
