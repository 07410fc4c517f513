package web

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aviancal/internal/export"
	"aviancal/internal/ics"
	appLog "aviancal/internal/log"
	"aviancal/internal/model"
	"aviancal/internal/schedule"
)

const (
	feedFormat  = "ics-feed"
	maxBodySize = 1 << 20
)

var errBadRequest = errors.New("bad request")

type seasonDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// scheduleDTO describes a configured plan for /api/schedules.
type scheduleDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ReferenceYear int       `json:"reference_year"`
	Season        seasonDTO `json:"season"`
	Locations     []string  `json:"locations"`
	Feed          bool      `json:"feed"`
	Formats       []string  `json:"formats"`
}

// customRequest is the body of POST /api/custom: a season generated with
// caller-supplied labels instead of the configured table.
type customRequest struct {
	Name      string          `json:"name"`
	Year      int             `json:"year"`
	Schedule  string          `json:"schedule,omitempty"`
	Schedules schedule.Labels `json:"schedules"`
}

func (s *Server) handleSchedules(w http.ResponseWriter, _ *http.Request) {
	out := make([]scheduleDTO, 0, len(s.plans))
	for _, p := range s.plans {
		formats := []string{"csv", "json", "xlsx", "pdf"}
		if p.Feed {
			formats = append(formats, "ics")
		}
		out = append(out, scheduleDTO{
			ID:            p.ID,
			Title:         p.Title,
			ReferenceYear: p.ReferenceYear,
			Season: seasonDTO{
				Start: fmt.Sprintf("%02d-%02d", int(p.Season.StartMonth), p.Season.StartDay),
				End:   fmt.Sprintf("%02d-%02d", int(p.Season.EndMonth), p.Season.EndDay),
			},
			Locations: p.Locations(),
			Feed:      p.Feed,
			Formats:   formats,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSchedule returns one season as JSON.
//
// GET /api/schedule?schedule=vibora&year=2025&template=false
//   - schedule: plan id (default: first configured)
//   - year:     1900..2100 (default: current year)
//   - template: leave labels blank
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	plan, year, template, err := s.selection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := plan.Generate(year, template)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, export.Document{Name: plan.Title, Year: year, Template: template, Entries: entries})
}

func (s *Server) handleCustom(w http.ResponseWriter, r *http.Request) {
	req, plan, entries, err := s.custom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, export.Document{Name: customName(req, plan), Year: req.Year, Entries: entries})
}

// handleCustomDownload renders a custom season as csv, json or xlsx.
func (s *Server) handleCustomDownload(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if f != export.FormatCSV && f != export.FormatJSON && f != export.FormatXLSX {
		s.fail(w, r, fmt.Errorf("%w: %s for custom schedules", export.ErrUnsupportedFormat, f))
		return
	}

	req, plan, entries, err := s.custom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	name := customName(req, plan)
	var buf bytes.Buffer
	if err := writeEntries(&buf, f, name, req.Year, false, entries); err != nil {
		s.fail(w, r, err)
		return
	}
	serveAttachment(w, f, export.FileName(export.SafeName(req.Name), req.Year, false, f), buf.Bytes())
}

// handleDownload serves a configured season as a file.
//
// GET /api/download/{format}?schedule=&year=&template=
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	plan, year, template, err := s.selection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := s.Render(r.Context(), plan.ID, year, template, f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	serveAttachment(w, f, export.FileName(plan.FilePrefix, year, template, f), body)
}

// handleFeed serves a subscribable calendar: GET /calendar/vibora.ics?year=2025.
// Responses carry an ETag so subscribers can poll cheaply.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".ics")
	if !ok || id == "" {
		http.NotFound(w, r)
		return
	}
	year, err := s.yearParam(r.URL.Query().Get("year"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := s.Feed(r.Context(), id, year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum := sha256.Sum256(body)
	w.Header().Set("Content-Type", export.FormatICS.ContentType())
	w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:8])+`"`)
	// ServeContent answers If-None-Match with 304.
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(body))
}

// handlePrint renders the printable page the PDF capture navigates to.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	plan, year, template, err := s.selection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := plan.Generate(year, template)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderHTML(&buf, plan.Title, year, entries); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Render produces a configured season in format f, from cache when fresh.
// ICS is only offered for plans with a feed and never for templates.
func (s *Server) Render(ctx context.Context, id string, year int, template bool, f export.Format) ([]byte, error) {
	plan, err := s.plans.Find(id)
	if err != nil {
		return nil, err
	}
	if err := schedule.ValidateYear(year); err != nil {
		return nil, err
	}
	if f == export.FormatICS && (!plan.Feed || template) {
		return nil, fmt.Errorf("%w: no calendar for %s", export.ErrUnsupportedFormat, plan.ID)
	}

	key := cacheKey{schedule: plan.ID, year: year, template: template, format: string(f)}
	return s.cache.getOrRender(key, func() ([]byte, error) {
		appLog.Debug("rendering schedule", "schedule", plan.ID, "year", year, "template", template, "format", string(f))
		return s.render(ctx, plan, year, template, f)
	})
}

// Feed is the subscription variant of the ICS download: METHOD:PUBLISH,
// a refresh hint and no alarms.
func (s *Server) Feed(ctx context.Context, id string, year int) ([]byte, error) {
	plan, err := s.plans.Find(id)
	if err != nil {
		return nil, err
	}
	if !plan.Feed {
		return nil, fmt.Errorf("%w: no calendar for %s", schedule.ErrUnknownSchedule, plan.ID)
	}
	if err := schedule.ValidateYear(year); err != nil {
		return nil, err
	}

	key := cacheKey{schedule: plan.ID, year: year, format: feedFormat}
	return s.cache.getOrRender(key, func() ([]byte, error) {
		return s.calendar(plan, year, true)
	})
}

// Events resolves a configured season into timed calendar events.
func (s *Server) Events(id string, year int) ([]model.CalendarEvent, error) {
	plan, err := s.plans.Find(id)
	if err != nil {
		return nil, err
	}
	entries, err := plan.Generate(year, false)
	if err != nil {
		return nil, err
	}
	return s.cfg.Mapper(plan).MapAll(entries), nil
}

// Plan looks up a configured plan; an empty id selects the first.
func (s *Server) Plan(id string) (schedule.Plan, error) {
	return s.plans.Find(id)
}

func (s *Server) render(ctx context.Context, plan schedule.Plan, year int, template bool, f export.Format) ([]byte, error) {
	switch f {
	case export.FormatPDF:
		return s.printPDF(ctx, plan.ID, year, template)
	case export.FormatICS:
		return s.calendar(plan, year, false)
	}

	entries, err := plan.Generate(year, template)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeEntries(&buf, f, plan.Title, year, template, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) calendar(plan schedule.Plan, year int, subscription bool) ([]byte, error) {
	entries, err := plan.Generate(year, false)
	if err != nil {
		return nil, err
	}
	body, err := ics.Generate(entries, s.cfg.Mapper(plan), ics.FeedOptions{
		Name:         fmt.Sprintf("%s %d", plan.Title, year),
		Timezone:     s.cfg.Timezone,
		Subscription: subscription,
	})
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func writeEntries(w io.Writer, f export.Format, title string, year int, template bool, entries []model.ScheduleEntry) error {
	switch f {
	case export.FormatCSV:
		return export.WriteCSV(w, entries)
	case export.FormatJSON:
		return export.WriteJSON(w, export.Document{Name: title, Year: year, Template: template, Entries: entries})
	case export.FormatXLSX:
		return export.WriteXLSX(w, title, year, entries)
	}
	return fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, f)
}

func (s *Server) custom(r *http.Request) (customRequest, schedule.Plan, []model.ScheduleEntry, error) {
	var req customRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		return req, schedule.Plan{}, nil, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	plan, err := s.plans.Find(req.Schedule)
	if err != nil {
		return req, plan, nil, err
	}
	entries, err := plan.GenerateCustom(req.Year, req.Schedules)
	if err != nil {
		return req, plan, nil, err
	}
	appLog.Info("custom schedule generated", "schedule", plan.ID, "name", req.Name, "year", req.Year, "entries", len(entries))
	return req, plan, entries, nil
}

func customName(req customRequest, plan schedule.Plan) string {
	if name := strings.TrimSpace(req.Name); name != "" {
		return name
	}
	return plan.Title
}

// selection reads schedule, year and template from the query string.
func (s *Server) selection(r *http.Request) (schedule.Plan, int, bool, error) {
	q := r.URL.Query()
	plan, err := s.plans.Find(q.Get("schedule"))
	if err != nil {
		return plan, 0, false, err
	}
	year, err := s.yearParam(q.Get("year"))
	if err != nil {
		return plan, 0, false, err
	}
	template, err := boolParam(q.Get("template"))
	if err != nil {
		return plan, 0, false, err
	}
	return plan, year, template, nil
}

// yearParam parses a year, defaulting to the current one in the
// configured zone.
func (s *Server) yearParam(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return s.now().In(s.loc).Year(), nil
	}
	return schedule.ParseYear(raw)
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: invalid flag %q", errBadRequest, raw)
	}
	return v, nil
}

func serveAttachment(w http.ResponseWriter, f export.Format, name string, body []byte) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", export.ContentDisposition(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fail maps err onto a status code and a JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		appLog.Error("request failed", err, "path", r.URL.Path)
		writeError(w, status, "failed to generate schedule")
		return
	}
	appLog.Debug("request rejected", "path", r.URL.Path, "status", status, "reason", err.Error())
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, schedule.ErrUnknownSchedule):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidYear),
		errors.Is(err, schedule.ErrInvalidLabels),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
