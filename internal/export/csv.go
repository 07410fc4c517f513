package export

import (
	"encoding/csv"
	"io"

	"aviancal/internal/model"
)

var csvHeader = []string{"Data", "Casal", "Horário"}

// WriteCSV writes one row per day: formatted date, location, label.
func WriteCSV(w io.Writer, entries []model.ScheduleEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.DateFormatted, e.Location, e.Schedule}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
