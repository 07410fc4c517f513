package export

import (
	"encoding/json"
	"io"

	"aviancal/internal/model"
)

// Document is the JSON shape for a generated season, also accepted back by
// the custom-schedule download endpoint.
type Document struct {
	Name     string                `json:"name"`
	Year     int                   `json:"year"`
	Template bool                  `json:"template,omitempty"`
	Entries  []model.ScheduleEntry `json:"data"`
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
