package export

import (
	"embed"
	"html/template"
	"io"

	"aviancal/internal/model"
)

//go:embed templates/print.html
var templateFS embed.FS

var printPage = template.Must(template.ParseFS(templateFS, "templates/print.html"))

type printData struct {
	Title   string
	Year    int
	Entries []model.ScheduleEntry
}

// RenderHTML writes the printable A4 page. The root element carries
// data-ready="true" so the PDF capture knows the table is in place.
func RenderHTML(w io.Writer, title string, year int, entries []model.ScheduleEntry) error {
	return printPage.Execute(w, printData{Title: title, Year: year, Entries: entries})
}
