package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"aviancal/internal/ics"
	"aviancal/internal/rotation"
	"aviancal/internal/schedule"
	"aviancal/internal/sun"
)

var ErrInvalidConfig = errors.New("invalid config")

// GroupConfig is one region whose villages rotate together.
type GroupConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Villages []string `yaml:"villages" json:"villages"`
}

// SeasonConfig holds the inclusive window as "MM-DD" strings.
type SeasonConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// ScheduleConfig describes one water (one rotation with its own labels).
type ScheduleConfig struct {
	// ID is used in URLs and file names ("vibora").
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	// FilePrefix names downloads ("agua-vibora-2025.xlsx").
	FilePrefix    string       `yaml:"file_prefix" json:"file_prefix"`
	ReferenceYear int          `yaml:"reference_year" json:"reference_year"`
	Season        SeasonConfig `yaml:"season" json:"season"`
	// Groups are listed in odd-year order; even years reverse them.
	Groups []GroupConfig  `yaml:"groups" json:"groups"`
	Labels schedule.Table `yaml:"labels" json:"labels"`
	// Feed enables calendar output; only time labels can be turned into
	// events.
	Feed bool `yaml:"feed" json:"feed"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web front end.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone for dates, sunset and event times.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron spec (e.g. "0 3 * * *") on which cached
	// downloads are dropped and regenerated on demand.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Latitude/Longitude locate the sunset used for the day boundary.
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`

	// AlarmLead is how long before a slot calendar reminders fire.
	AlarmLead time.Duration `yaml:"alarm_lead" json:"alarm_lead"`

	DateLocale string `yaml:"date_locale" json:"date_locale"`
	DateFormat string `yaml:"date_format" json:"date_format"`

	// UIDDomain is appended to calendar event UIDs.
	UIDDomain string `yaml:"uid_domain" json:"uid_domain"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Schedules []ScheduleConfig `yaml:"schedules" json:"schedules"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen    = "127.0.0.1:8080"
	defaultTimezone  = "Europe/Lisbon"
	defaultRefresh   = "0 3 * * *"
	defaultLatitude  = 41.2
	defaultLongitude = -8.3
	defaultAlarmLead = 2 * time.Hour
	defaultUIDDomain = "aviancal.local"
)

// DefaultConfig returns the two waters of the village as shipped.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		RefreshCron: defaultRefresh,
		Latitude:    defaultLatitude,
		Longitude:   defaultLongitude,
		AlarmLead:   defaultAlarmLead,
		DateLocale:  schedule.DefaultDateLocale,
		DateFormat:  schedule.DefaultDateFormat,
		UIDDomain:   defaultUIDDomain,
		LogLevel:    "INFO",
		Schedules: []ScheduleConfig{
			{
				ID:            "vibora",
				Title:         "Água de Víbora",
				FilePrefix:    "agua-vibora",
				ReferenceYear: 2025,
				Season:        SeasonConfig{Start: "06-25", End: "09-29"},
				Groups: []GroupConfig{
					{Name: "Torre", Villages: []string{"Torre", "Crasto", "Passo", "Ramada", "Figueiredo", "Redondinho"}},
					{Name: "Santo-Antonio", Villages: []string{"Casa Nova", "Eirô", "Cimo de Aldeia", "Portela", "Casa de Baixo"}},
				},
				Labels: schedule.Table{
					Odd: schedule.Labels{
						"Torre": {"1h30 da tarde", "12h até as 2h da tarde"},
						"Passo": {
							"10 da noite até ás 1h30/5h30 da tarde",
							"9h30 até 10h30/13h30 até 17h",
						},
						"Figueiredo": {
							"Ao pôr do sol até à meia noite",
							"3h da tarde até ao pôr do sol",
						},
					},
					Even: schedule.Labels{
						"Torre": {"12h", "13h30"},
						"Passo": {
							"9h30 até 10h30 da Noite/13h30 até 17h",
							"10 da noite até á 1h30/5h30 da tarde",
						},
						"Figueiredo": {"Nascer do sol às 12h", "3h até ao Nascer do sol"},
					},
				},
				Feed: true,
			},
			{
				ID:            "coblinho",
				Title:         "Água do Coblinho",
				FilePrefix:    "agua-coblinho",
				ReferenceYear: 2019,
				Season:        SeasonConfig{Start: "06-25", End: "09-02"},
				Groups: []GroupConfig{
					{Name: "Coblinho", Villages: []string{"Torre", "Crasto", "Passo", "Ramada", "Figueiredo", "Redondinho"}},
				},
				Labels: schedule.Table{
					Odd: schedule.Labels{
						"Passo":      {"Torre/Souto", "Figueiredo/Torre", "Souto/Torre", "Torre/Figueiredo"},
						"Ramada":     {"Simão", "Simão", "Simão", "Simão"},
						"Figueiredo": {"Simão", "Simão", "Simão", "Simão"},
						"Redondinho": {"Souto", "Simão", "Souto", "Simão"},
						"Torre":      {"Souto", "Souto", "Souto", "Souto"},
						"Crasto":     {"Souto/Simão", "Souto", "Simão/Souto", "Souto"},
					},
					Even: schedule.Labels{
						"Crasto":     {"Ramada/Dourado", "Simão", "Ramada", "Simão"},
						"Passo":      {"Simão", "Souto", "Simão", "Souto"},
						"Ramada":     {"Souto", "Souto", "Souto", "Souto"},
						"Figueiredo": {"Souto", "Souto/Simão", "Souto", "Simão/Souto"},
						"Redondinho": {"Torre/Souto", "Figueiredo/Torre", "Souto/Torre", "Torre/Figueiredo"},
						"Torre":      {"Simão", "Ze Manel", "Simão", "Ze Manel"},
					},
				},
				Feed: false,
			},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude = defaultLatitude
		c.Longitude = defaultLongitude
	}
	if c.AlarmLead <= 0 {
		c.AlarmLead = defaultAlarmLead
	}
	if c.DateLocale == "" {
		c.DateLocale = schedule.DefaultDateLocale
	}
	if c.DateFormat == "" {
		c.DateFormat = schedule.DefaultDateFormat
	}
	if c.UIDDomain == "" {
		c.UIDDomain = defaultUIDDomain
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	for i := range c.Schedules {
		s := &c.Schedules[i]
		if s.Title == "" {
			s.Title = s.ID
		}
		if s.FilePrefix == "" {
			s.FilePrefix = s.ID
		}
	}
}

// Validate checks everything generation relies on: non-empty village
// lists, well-formed seasons and labels, a loadable zone and a parseable
// refresh spec.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("%w: refresh %q: %v", ErrInvalidConfig, c.RefreshCron, err)
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: coordinates %.4f,%.4f out of range", ErrInvalidConfig, c.Latitude, c.Longitude)
	}
	if len(c.Schedules) == 0 {
		return fmt.Errorf("%w: no schedules configured", ErrInvalidConfig)
	}

	ids := make(map[string]bool, len(c.Schedules))
	for _, s := range c.Schedules {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: schedule without id", ErrInvalidConfig)
		}
		if ids[s.ID] {
			return fmt.Errorf("%w: duplicate schedule id %q", ErrInvalidConfig, s.ID)
		}
		ids[s.ID] = true

		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, s.ID, err)
		}
	}
	return nil
}

func (s ScheduleConfig) validate() error {
	if _, _, err := schedule.ParseMonthDay(s.Season.Start); err != nil {
		return err
	}
	if _, _, err := schedule.ParseMonthDay(s.Season.End); err != nil {
		return err
	}
	if len(s.Groups) == 0 {
		return errors.New("no groups")
	}

	seen := make(map[string]bool)
	for _, g := range s.Groups {
		if len(g.Villages) == 0 {
			return fmt.Errorf("group %q has no villages", g.Name)
		}
		for _, v := range g.Villages {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("group %q has a blank village", g.Name)
			}
			if seen[v] {
				return fmt.Errorf("village %q listed twice", v)
			}
			seen[v] = true
		}
	}

	if err := schedule.ValidateLabels(s.Labels.Odd); err != nil {
		return fmt.Errorf("odd labels: %w", err)
	}
	if err := schedule.ValidateLabels(s.Labels.Even); err != nil {
		return fmt.Errorf("even labels: %w", err)
	}
	return nil
}

// Plans converts the schedules into generation plans bound to the
// configured zone and date format.
func (c *Config) Plans() (schedule.Catalog, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}

	plans := make(schedule.Catalog, 0, len(c.Schedules))
	for _, s := range c.Schedules {
		sm, sd, err := schedule.ParseMonthDay(s.Season.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, s.ID, err)
		}
		em, ed, err := schedule.ParseMonthDay(s.Season.End)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, s.ID, err)
		}

		groups := make([]rotation.Group, 0, len(s.Groups))
		for _, g := range s.Groups {
			groups = append(groups, rotation.Group{Name: g.Name, Locations: append([]string(nil), g.Villages...)})
		}

		plans = append(plans, schedule.Plan{
			ID:            s.ID,
			Title:         s.Title,
			FilePrefix:    s.FilePrefix,
			ReferenceYear: s.ReferenceYear,
			Groups:        groups,
			Season:        schedule.Season{StartMonth: sm, StartDay: sd, EndMonth: em, EndDay: ed},
			Labels:        s.Labels,
			Feed:          s.Feed,
			Location:      loc,
			DateLocale:    c.DateLocale,
			DateFormat:    c.DateFormat,
		})
	}
	return plans, nil
}

// Mapper returns the calendar mapper for plan: event times and sunset in
// the plan's zone, alarms at the configured lead.
func (c *Config) Mapper(plan schedule.Plan) ics.Mapper {
	return ics.Mapper{
		ScheduleID:  plan.ID,
		Sun:         sun.New(c.Latitude, c.Longitude, plan.Location),
		Location:    plan.Location,
		AlarmOffset: c.AlarmLead,
		Category:    plan.Title,
		UIDDomain:   c.UIDDomain,
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".aviancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
