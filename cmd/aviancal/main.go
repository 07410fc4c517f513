package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"aviancal/internal/config"
	appLog "aviancal/internal/log"
)

const version = "0.3.0"

var cli struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config file." type:"path" default:"/etc/aviancal/config.yaml" env:"AVIANCAL_CONFIG"`
	Debug   bool   `help:"Verbose logging."`

	Serve  ServeCmd  `cmd:"" help:"Run the HTTP server."`
	Show   ShowCmd   `cmd:"" help:"Print a season as a table."`
	Export ExportCmd `cmd:"" help:"Write a season to a file."`
	Events EventsCmd `cmd:"" help:"List the calendar events of a season or an .ics file."`
}

// appContext is handed to every command's Run.
type appContext struct {
	ctx   context.Context
	cfg   *config.Config
	debug bool
	out   io.Writer
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("aviancal"),
		kong.Description("Irrigation turn schedules, spreadsheets and calendar feeds."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	conf, err := config.Load(cli.Config)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", cli.Config)
		os.Exit(1)
	}
	level := appLog.ParseLevel(conf.LogLevel)
	if cli.Debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)
	appLog.Debug("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"schedules", len(conf.Schedules),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	err = kctx.Run(&appContext{ctx: ctx, cfg: conf, debug: cli.Debug, out: os.Stdout})
	appLog.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
