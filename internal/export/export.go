// Package export writes schedule entries as downloadable files: CSV, JSON,
// XLSX and a printable HTML page (turned into PDF by internal/capture).
//
// Writers take rows in order and a bold flag per row; layout is their only
// concern.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Format is a download format name as used in URLs and flags.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatICS  Format = "ics"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat normalises a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatPDF, FormatICS:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	}
	return "application/octet-stream"
}

// FileName builds "agua-vibora-2025.xlsx" or "agua-vibora-2025-template.xlsx".
func FileName(prefix string, year int, template bool, f Format) string {
	if template {
		return fmt.Sprintf("%s-%d-template.%s", prefix, year, f)
	}
	return fmt.Sprintf("%s-%d.%s", prefix, year, f)
}

var (
	unsafeName = regexp.MustCompile(`[/\\?%*:|"<>]`)

	unsafeSheetChars = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "")
)

// SafeName makes a user-supplied schedule name usable as a file name.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "agenda-personalizada"
	}
	return unsafeName.ReplaceAllString(name, "-")
}

// ContentDisposition returns an attachment header with both an RFC 5987
// encoded name and a plain fallback, so non-ASCII names survive on every
// client.
func ContentDisposition(fileName string) string {
	encoded := url.PathEscape(fileName)
	for _, c := range "!'()*" {
		encoded = strings.ReplaceAll(encoded, string(c), fmt.Sprintf("%%%02X", c))
	}
	fallback := strings.Map(func(r rune) rune {
		if r > 127 || r == '"' {
			return '_'
		}
		return r
	}, fileName)
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s; filename="%s"`, encoded, fallback)
}
