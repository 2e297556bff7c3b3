// Package main provides the CLI entry point for layerpaint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/layerpaint/pkg/adapters/filesink"
	"github.com/user/layerpaint/pkg/adapters/frameloop"
	"github.com/user/layerpaint/pkg/adapters/ggsurface"
	"github.com/user/layerpaint/pkg/adapters/logger"
	"github.com/user/layerpaint/pkg/adapters/lognotifier"
	"github.com/user/layerpaint/pkg/adapters/nullsink"
	"github.com/user/layerpaint/pkg/adapters/osfilesystem"
	"github.com/user/layerpaint/pkg/config"
	"github.com/user/layerpaint/pkg/orchestrator"
	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/session"
	"github.com/user/layerpaint/pkg/stages/export"
	"github.com/user/layerpaint/pkg/stages/replay"
	"github.com/user/layerpaint/pkg/summarizer"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:        "layerpaint",
		Usage:       l10n.T("Replay layered drawing scripts into images"),
		Description: l10n.T("layerpaint replays timed pointer and layer scripts on a layered canvas and exports the result."),
		Version:     version,
		Commands: []*cli.Command{
			replayCommand(),
			flattenCommand(),
			versionCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output PNG file path"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "pdf", Usage: l10n.T("Also export a PDF to this path"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "background", Usage: l10n.T("Background color for exports (hex, e.g., #ffffff)"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Settings")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

func replayCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "save", Usage: l10n.T("Save the resulting document to this path"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Canvas preset (default, square, hd, a4)"), Category: l10n.T("Canvas")},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Canvas width when the script sets none"), Category: l10n.T("Canvas")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Canvas height when the script sets none"), Category: l10n.T("Canvas")},
		&cli.IntFlag{Name: "history", Usage: l10n.T("Maximum undo depth"), Category: l10n.T("Replay")},
		&cli.IntFlag{Name: "frame-interval", Usage: l10n.T("Refresh interval in milliseconds"), Category: l10n.T("Replay")},
		&cli.BoolFlag{Name: "realtime", Usage: l10n.T("Pace the replay against the wall clock"), Category: l10n.T("Replay")},
	)
	return &cli.Command{
		Name:        "replay",
		Usage:       l10n.T("Replay a drawing script"),
		Description: l10n.T("Replay a timed drawing script and export the composited canvas."),
		ArgsUsage:   "SCRIPT",
		Flags:       flags,
		Action:      runReplay,
	}
}

func flattenCommand() *cli.Command {
	return &cli.Command{
		Name:        "flatten",
		Usage:       l10n.T("Flatten a saved document"),
		Description: l10n.T("Load a saved document and export its composite as PNG or PDF."),
		ArgsUsage:   "DOCUMENT",
		Flags:       commonFlags(),
		Action:      runFlatten,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Println(l10n.F("layerpaint version %s", version))
			return nil
		},
	}
}

// buildConfig loads the configuration file and applies flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	base := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		base = loaded
	}

	b := config.NewBuilder(base)
	if c.IsSet("preset") {
		b.WithPreset(config.CanvasPreset(c.String("preset")))
	}
	if c.IsSet("width") || c.IsSet("height") {
		b.WithSize(c.Int("width"), c.Int("height"))
	}
	if c.IsSet("background") {
		b.WithBackground(c.String("background"))
	}
	if c.IsSet("history") {
		b.WithHistoryDepth(c.Int("history"))
	}
	if c.IsSet("frame-interval") {
		b.WithFrameInterval(c.Int("frame-interval"))
	}
	if c.IsSet("log-level") {
		b.WithLogLevel(c.String("log-level"))
	}
	if c.IsSet("debug") || c.IsSet("debug-dir") {
		dir := base.DebugDir
		if c.IsSet("debug-dir") {
			dir = c.String("debug-dir")
		}
		b.WithDebug(c.Bool("debug") || base.Debug, dir)
	}
	return b.Build()
}

// app holds the adapters and session shared by both commands.
type app struct {
	cfg      config.Config
	log      ports.Logger
	quiet    *logger.Quiet
	fs       *osfilesystem.FileSystem
	provider *ggsurface.Provider
	sink     ports.DebugSink
	loop     *frameloop.Loop
	clock    *frameloop.ManualClock
	sess     *session.Session
}

func newApp(c *cli.Context, realtime bool) (*app, error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, fs: osfilesystem.New(), provider: ggsurface.New()}
	if c.Bool("quiet") {
		a.quiet = logger.NewQuiet()
		a.log = a.quiet
	} else {
		a.log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	if cfg.Debug {
		if err := a.fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		a.sink = filesink.New(cfg.DebugDir, a.fs, a.provider)
	} else {
		a.sink = nullsink.New()
	}

	sessCfg, err := cfg.ToSessionConfig()
	if err != nil {
		return nil, err
	}

	a.loop = frameloop.New(cfg.FrameInterval())
	var clock ports.Clock = frameloop.SystemClock{}
	if !realtime {
		a.clock = frameloop.NewManualClock(time.Now())
		clock = a.clock
	}

	a.sess, err = session.New(sessCfg, session.Deps{
		Provider:   a.provider,
		Scheduler:  a.loop,
		Clock:      clock,
		Notifier:   lognotifier.New(a.log),
		Sink:       a.sink,
		FileSystem: a.fs,
		Logger:     a.log,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func (a *app) newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(
		replay.NewParser(a.log),
		replay.New(a.sess, a.loop, a.clock, a.log),
		export.New(a.provider, a.log),
		a.sess,
		a.fs,
		a.sink,
		a.log,
	)
}

func (a *app) orchestratorConfig(c *cli.Context) orchestrator.Config {
	return orchestrator.Config{
		OutputPath: c.String("output"),
		PDFPath:    c.String("pdf"),
		Background: a.cfg.BackgroundColor(),
	}
}

func runReplay(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A script argument is required"), 2)
	}
	realtime := c.Bool("realtime")
	a, err := newApp(c, realtime)
	if err != nil {
		return err
	}
	defer a.sess.Close()

	ctx, cancel := signalContext(a.log)
	defer cancel()

	cfg := a.orchestratorConfig(c)
	cfg.ScriptPath = c.Args().First()
	cfg.SavePath = c.String("save")
	cfg.Realtime = realtime

	result, err := a.newOrchestrator().Run(ctx, cfg)
	if err != nil {
		return err
	}

	if path := c.String("summary"); path != "" {
		summary := orchestrator.BuildSummary(result, a.sess, time.Now())
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, a.fs).Write(path, summary); err != nil {
			a.log.Error("Failed to write summary: %s", err)
		} else {
			a.log.Info("Summary written to %s", path)
		}
	}
	return a.suppressedErrors()
}

// suppressedErrors turns errors hidden by --quiet into a failing exit code.
func (a *app) suppressedErrors() error {
	if a.quiet == nil || a.quiet.Errors() == 0 {
		return nil
	}
	return cli.Exit(l10n.F("Completed with %d suppressed errors", a.quiet.Errors()), 1)
}

func runFlatten(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A document argument is required"), 2)
	}
	a, err := newApp(c, false)
	if err != nil {
		return err
	}
	defer a.sess.Close()

	ctx, cancel := signalContext(a.log)
	defer cancel()

	cfg := a.orchestratorConfig(c)
	cfg.DocumentPath = c.Args().First()
	if cfg.OutputPath == "" && cfg.PDFPath == "" {
		return cli.Exit(l10n.T("Nothing to export: set --output or --pdf"), 2)
	}

	if _, err := a.newOrchestrator().Flatten(ctx, cfg); err != nil {
		return err
	}
	return a.suppressedErrors()
}
