package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"aviancal/internal/export"
	"aviancal/internal/ics"
	appLog "aviancal/internal/log"
	"aviancal/internal/model"
	"aviancal/internal/web"
)

const eventLayout = "2006-01-02 15:04"

var (
	boldRow   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	plainRow  = lipgloss.NewStyle().Padding(0, 1)
	headerRow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241")).Padding(0, 1)
)

type ServeCmd struct {
	Listen string `help:"HTTP listen address (overrides config)."`
}

func (c *ServeCmd) Run(app *appContext) error {
	if c.Listen != "" {
		app.cfg.Listen = c.Listen
	}
	return web.StartServer(app.ctx, app.cfg, app.debug)
}

// Selection is shared by the commands that pick one season.
type Selection struct {
	Schedule string `help:"Schedule id (default: first configured)." short:"s"`
	Year     int    `help:"Season year (default: current year)." short:"y"`
}

func (s Selection) year(app *appContext) (int, error) {
	if s.Year != 0 {
		return s.Year, nil
	}
	loc, err := time.LoadLocation(app.cfg.Timezone)
	if err != nil {
		return 0, err
	}
	return time.Now().In(loc).Year(), nil
}

type ShowCmd struct {
	Selection
	Template bool `help:"Leave labels blank."`
}

func (c *ShowCmd) Run(app *appContext) error {
	plans, err := app.cfg.Plans()
	if err != nil {
		return err
	}
	plan, err := plans.Find(c.Schedule)
	if err != nil {
		return err
	}
	year, err := c.year(app)
	if err != nil {
		return err
	}
	entries, err := plan.Generate(year, c.Template)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "%s - Ano %d\n", plan.Title, year)
	fmt.Fprintln(app.out, renderTable(entries))
	return nil
}

func renderTable(entries []model.ScheduleEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.DateFormatted, e.Location, e.Schedule})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Data", "Casal", "Horário").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerRow
			case row >= 0 && row < len(entries) && entries[row].IsBold:
				return boldRow
			}
			return plainRow
		}).
		String()
}

type ExportCmd struct {
	Selection
	Format   string `help:"Output format." enum:"csv,json,xlsx,ics,pdf" default:"xlsx" short:"f"`
	Template bool   `help:"Leave labels blank."`
	Out      string `help:"Output file; '-' writes to stdout. Default: the download file name." short:"o"`
}

func (c *ExportCmd) Run(app *appContext) error {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(app.cfg, app.debug)
	if err != nil {
		return err
	}
	plan, err := srv.Plan(c.Schedule)
	if err != nil {
		return err
	}
	year, err := c.year(app)
	if err != nil {
		return err
	}

	body, err := srv.Render(app.ctx, plan.ID, year, c.Template, f)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = export.FileName(plan.FilePrefix, year, c.Template, f)
	}
	if out == "-" {
		_, err := app.out.Write(body)
		return err
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return err
	}
	appLog.Info("schedule exported", "schedule", plan.ID, "year", year, "format", string(f), "path", out, "bytes", len(body))
	return nil
}

type EventsCmd struct {
	Selection
	File string `help:"Read events from an .ics file instead of generating them." type:"existingfile" xor:"source"`
	URL  string `help:"Read events from a published feed, e.g. http://host/calendar/vibora.ics." xor:"source"`
}

func (c *EventsCmd) Run(app *appContext) error {
	var events []model.CalendarEvent
	if c.URL != "" {
		var err error
		if events, err = ics.NewFetcher(0).Events(app.ctx, c.URL); err != nil {
			return err
		}
	} else if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return err
		}
		if events, err = ics.ParseFeed(string(data)); err != nil {
			return err
		}
	} else {
		srv, err := web.NewServer(app.cfg, app.debug)
		if err != nil {
			return err
		}
		year, err := c.year(app)
		if err != nil {
			return err
		}
		if events, err = srv.Events(c.Schedule, year); err != nil {
			return err
		}
	}

	loc, err := time.LoadLocation(app.cfg.Timezone)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	for _, ev := range events {
		fmt.Fprintf(&b, "%s  %s  %s", ev.Start.In(loc).Format(eventLayout), ev.End.In(loc).Format(eventLayout), ev.Title)
		if desc := strings.TrimSpace(ev.Description); desc != "" {
			fmt.Fprintf(&b, "  (%s)", desc)
		}
		b.WriteByte('\n')
	}
	_, err = app.out.Write(b.Bytes())
	return err
}
