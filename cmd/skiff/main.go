package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/skiff/internal/cli"
	"github.com/alexanderramin/skiff/internal/db"
	"github.com/alexanderramin/skiff/internal/graph"
	"github.com/alexanderramin/skiff/internal/remote"
	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/alexanderramin/skiff/internal/service"
	synceng "github.com/alexanderramin/skiff/internal/sync"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/oauth2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Plain output when not writing to a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger := newLogger()

	// Determine DB path: env var or default ~/.skiff/skiff.db
	dbPath := os.Getenv("SKIFF_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".skiff", "skiff.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	store := repository.NewSQLiteTaskStore(database)
	uow := db.NewSQLiteUnitOfWork(database)

	tasks := service.NewTaskService(store, uow, graph.New(), logger)
	if err := tasks.Load(context.Background()); err != nil {
		return fmt.Errorf("loading task graph: %w", err)
	}

	engine := synceng.NewEngine(store, synceng.WithLogger(logger))
	if base := os.Getenv("SKIFF_REMOTE"); base != "" {
		engine.AttachRemote(remote.NewClient(base, remoteHTTPClient()))
	}

	if every := os.Getenv("SKIFF_SYNC_EVERY"); every != "" {
		interval, err := time.ParseDuration(every)
		if err != nil {
			return fmt.Errorf("parsing SKIFF_SYNC_EVERY: %w", err)
		}
		engine.StartAutoSync(interval)
		defer engine.StopAutoSync()
	}

	app := &cli.App{Tasks: tasks, Store: store, Engine: engine}
	return cli.NewRootCmd(app).Execute()
}

// remoteHTTPClient returns the HTTP client used against the remote
// collection, carrying a bearer token when SKIFF_REMOTE_TOKEN is set.
func remoteHTTPClient() *http.Client {
	token := os.Getenv("SKIFF_REMOTE_TOKEN")
	if token == "" {
		return &http.Client{Timeout: 30 * time.Second}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = 30 * time.Second
	return client
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("SKIFF_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
