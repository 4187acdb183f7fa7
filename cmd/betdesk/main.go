package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alejandrodnm/betdesk/config"
	"github.com/alejandrodnm/betdesk/internal/adapters/backend"
	"github.com/alejandrodnm/betdesk/internal/adapters/feed"
	"github.com/alejandrodnm/betdesk/internal/adapters/notify"
	"github.com/alejandrodnm/betdesk/internal/adapters/storage"
)

// stringList acumula valores de un flag repetible (-stake a -stake b).
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")

	watch := flag.Bool("watch", false, "mirror the realtime feed until interrupted")
	reviewID := flag.String("review", "", "review the bet with the given id")
	approve := flag.Bool("approve", false, "submit the approval after applying edits (with -review)")
	var stakes stringList
	flag.Var(&stakes, "stake", "stake override ref=value, repeatable (with -review)")
	var removals stringList
	flag.Var(&removals, "remove", "slip index to remove, repeatable (with -review)")
	var adds stringList
	flag.Var(&adds, "add", "selection to add as event|market|selection, repeatable (with -review)")
	markets := flag.String("markets", "", "list the market catalogue for the named event (with -review)")
	history := flag.Bool("history", false, "print the bet history")
	dashboard := flag.Bool("dashboard", false, "print dashboard stats")
	notifications := flag.Bool("notifications", false, "print backend notifications")
	analyze := flag.Bool("analyze", false, "trigger the daily analysis cycle")
	date := flag.String("date", "", "target date YYYY-MM-DD (with -analyze)")
	risk := flag.Float64("set-risk", 0, "save agent settings with the given risk appetite (1-5)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("betdesk starting",
		"config", *configPath,
		"backend", cfg.Backend.BaseURL,
		"feed", cfg.Feed.URL,
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	client := backend.NewClient(cfg.Backend.BaseURL)
	console := notify.NewConsole(cfg.Review.Currency)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &app{
		cfg:     cfg,
		store:   store,
		backend: client,
		console: console,
	}

	switch {
	case *watch:
		err = app.runWatch(ctx, feed.NewWebSocket(cfg.Feed.URL))
	case *reviewID != "" && *markets != "":
		err = app.runMarkets(ctx, *reviewID, *markets)
	case *reviewID != "":
		err = app.runReview(ctx, *reviewID, reviewEdits{
			stakes:   stakes,
			removals: removals,
			adds:     adds,
			approve:  *approve,
		})
	case *history:
		err = app.runHistory(ctx)
	case *dashboard:
		err = app.runDashboard(ctx)
	case *notifications:
		err = app.runNotifications(ctx)
	case *analyze:
		err = app.runAnalyze(ctx, *date)
	case *risk > 0:
		err = app.runSetRisk(ctx, *risk)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -watch, -review <id>, -history, -dashboard, -notifications or -analyze")
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("betdesk exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("betdesk stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
