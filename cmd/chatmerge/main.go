// ABOUTME: Entry point for the chatmerge command line tool
// ABOUTME: Replays chat scripts through the merge engine, manages config and reads the transcript journal

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"

	"github.com/2389/chatmerge/internal/config"
	"github.com/2389/chatmerge/internal/correlation"
	"github.com/2389/chatmerge/internal/display"
	"github.com/2389/chatmerge/internal/merge"
	"github.com/2389/chatmerge/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
       _           _
   ___| |__   __ _| |_ _ __ ___   ___ _ __ __ _  ___
  / __| '_ \ / _' | __| '_ ' _ \ / _ \ '__/ _' |/ _ \
 | (__| | | | (_| | |_| | | | | |  __/ | | (_| |  __/
  \___|_| |_|\__,_|\__|_| |_| |_|\___|_|  \__, |\___|
                                          |___/
`

// getConfigPath returns the path to the config file.
// Priority: CHATMERGE_CONFIG env var > XDG_CONFIG_HOME/chatmerge/config.yaml > ~/.config/chatmerge/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CHATMERGE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chatmerge", "config.yaml")
}

// loadConfig loads the config at path, or at the default location when
// path is empty. A missing default file yields the built-in defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	path = getConfigPath()
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), "(defaults)", nil
	}
	return cfg, path, err
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: chatmerge <command> [flags]")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  run      Replay a JSON-lines chat script (stdin or -script FILE)")
		fmt.Println("  init     Write a default config file")
		fmt.Println("  history  Print journaled transcript lines")
		fmt.Println("  version  Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "run":
		err = runRun(ctx, os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "history":
		err = runHistory(ctx, os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configFlag := fs.String("config", "", "Config file (default: $CHATMERGE_CONFIG or XDG path)")
	scriptFlag := fs.String("script", "", "Script file (default: stdin)")
	quiet := fs.Bool("quiet", false, "Suppress banner and summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(*configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	// the store logs through the default logger
	slog.SetDefault(logger)

	if !*quiet {
		cyan := color.New(color.FgCyan)
		gray := color.New(color.FgHiBlack)
		green := color.New(color.FgGreen)

		cyan.Fprint(os.Stderr, banner)
		gray.Fprintf(os.Stderr, "    version: %s\n\n", version)

		green.Fprint(os.Stderr, "    ▶ ")
		fmt.Fprintf(os.Stderr, "Config:  %s\n", configPath)
		green.Fprint(os.Stderr, "    ▶ ")
		fmt.Fprintf(os.Stderr, "Window:  %s\n", cfg.Merge.Window)
		green.Fprint(os.Stderr, "    ▶ ")
		fmt.Fprintf(os.Stderr, "Panes:   %v\n", cfg.Display.Panes)
		if cfg.Journal.Enabled {
			green.Fprint(os.Stderr, "    ▶ ")
			fmt.Fprintf(os.Stderr, "Journal: %s\n", cfg.Journal.Path)
		}
		fmt.Fprintln(os.Stderr)
	}

	clock := clockwork.NewRealClock()

	records := correlation.NewStore(correlation.StoreConfig{
		Window:        cfg.Merge.Window,
		MaxRecords:    cfg.Merge.MaxRecords,
		SweepInterval: cfg.Merge.SweepInterval,
		Clock:         clock,
	}, logger)
	defer records.Close()

	engine := merge.New(records, logger)

	bus := display.NewBroadcaster(logger)
	defer bus.Close()

	hub := display.NewHub(display.HubConfig{
		HistoryLimit: cfg.Display.HistoryLimit,
		Clock:        clock,
	}, engine, bus, logger)
	for _, name := range cfg.Display.Panes {
		hub.Pane(name)
	}

	subCtx, cancelSub := context.WithCancel(ctx)
	defer cancelSub()
	changes := subscribeAll(subCtx, bus, cfg.Display.Panes)

	tty := isTerminal(os.Stdout)
	renderer := display.NewRenderer(os.Stdout, display.RendererConfig{
		Color:    cfg.Display.Color && tty,
		Rewrite:  cfg.Display.Rewrite && tty,
		ShowPane: len(cfg.Display.Panes) > 1,
	})
	sinks := []changeSink{
		func(_ context.Context, c display.Change) error { return renderer.Render(c) },
	}

	if cfg.Journal.Enabled {
		st, err := store.NewSQLiteStore(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer st.Close()

		journal := store.NewJournal(st, logger)
		sinks = append(sinks, func(ctx context.Context, c display.Change) error {
			if err := journal.Record(ctx, c); err != nil {
				logger.Error("failed to journal change", "error", err, "pane", c.PaneName)
			}
			return nil
		})
	}

	var input io.Reader = os.Stdin
	if *scriptFlag != "" {
		f, err := os.Open(*scriptFlag)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		input = f
	}

	runner := &scriptRunner{
		engine:  engine,
		hub:     hub,
		panes:   cfg.Display.Panes,
		format:  cfg.Input.Format,
		clock:   clock,
		changes: changes,
		sinks:   sinks,
		logger:  logger.With("component", "script"),
	}

	logger.Info("replaying script", "panes", len(cfg.Display.Panes), "format", cfg.Input.Format)
	if err := runner.Run(ctx, input); err != nil {
		return err
	}

	if !*quiet {
		stats := engine.Stats()
		fmt.Fprintln(os.Stderr)
		color.New(color.FgHiBlack).Fprintf(os.Stderr,
			"    appended: %d  merged: %d  pass-through: %d\n",
			stats.Appended, stats.Merged, stats.PassThrough)
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configFlag := fs.String("config", "", "Where to write the config (default: $CHATMERGE_CONFIG or XDG path)")
	force := fs.Bool("force", false, "Overwrite an existing config")
	useTOML := fs.Bool("toml", false, "Write TOML instead of YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configFlag
	if path == "" {
		path = getConfigPath()
		if *useTOML {
			path = path[:len(path)-len(filepath.Ext(path))] + ".toml"
		}
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("config already exists at %s (use -force to overwrite)", path)
	}

	if err := config.Default().Write(path); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Wrote config to %s\n", path)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	configFlag := fs.String("config", "", "Config file (default: $CHATMERGE_CONFIG or XDG path)")
	pane := fs.String("pane", "", "Pane to show (default: all panes)")
	limit := fs.Int("limit", 20, "Number of most recent lines per pane (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := loadConfig(*configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(setupLogger(cfg.Logging, os.Stderr))

	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return fmt.Errorf("no journal at %s: %w", cfg.Journal.Path, err)
	}

	st, err := store.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer st.Close()

	panes := []string{*pane}
	if *pane == "" {
		if panes, err = st.ListPanes(ctx); err != nil {
			return err
		}
	}

	renderer := display.NewRenderer(os.Stdout, display.RendererConfig{
		Color: cfg.Display.Color && isTerminal(os.Stdout),
	})
	return printHistory(ctx, os.Stdout, st, renderer, panes, *limit)
}

func printHistory(ctx context.Context, out io.Writer, st store.LineStore, renderer *display.Renderer, panes []string, limit int) error {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	for i, name := range panes {
		lines, err := st.GetLines(ctx, name, limit)
		if err != nil {
			return fmt.Errorf("reading pane %s: %w", name, err)
		}
		if len(panes) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			cyan.Fprintf(out, "== %s ==\n", name)
		}
		for _, line := range lines {
			gray.Fprintf(out, "%s %4d ", line.UpdatedAt.Local().Format("15:04:05"), line.Seq)
			fmt.Fprint(out, renderer.FormatText(line.Text))
			if line.Revision > 0 {
				gray.Fprintf(out, "  (rev %d)", line.Revision)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
