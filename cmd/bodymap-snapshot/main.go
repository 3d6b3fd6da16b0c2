package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/bodymap/internal/localstore"
	"github.com/claude/bodymap/internal/logging"
	"github.com/claude/bodymap/internal/muscles"
	"github.com/claude/bodymap/internal/recovery"
	"github.com/claude/bodymap/internal/tracker"
	"github.com/claude/bodymap/internal/upload"
)

func main() {
	dbPath := flag.String("db", "", "path to SQLite export (required)")
	login := flag.String("login", "", "user login (required)")
	importPath := flag.String("import", "", "JSON file of sessions to add before computing")
	muscle := flag.String("muscle", "", "print a single muscle group instead of the full report")
	bodyMap := flag.Bool("body-map", false, "print every body part with color and step")
	tablePath := flag.String("muscle-table", "", "YAML muscle table (default built-in)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *dbPath == "" || *login == "" {
		fmt.Fprintf(os.Stderr, "Usage: bodymap-snapshot -db export.db -login user@example.com [-import sessions.json] [-muscle Chest | -body-map]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logging.New(os.Stderr, level)

	table := muscles.Default()
	if *tablePath != "" {
		var err error
		if table, err = muscles.Load(*tablePath); err != nil {
			log.Error("failed to load muscle table", "path", *tablePath, "error", err)
			os.Exit(1)
		}
	}

	store, err := localstore.Open(*dbPath)
	if err != nil {
		log.Error("failed to open export", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	userID, err := store.UserID(ctx, *login)
	if errors.Is(err, localstore.ErrNotFound) && *importPath != "" {
		userID, err = store.GetOrCreateUser(ctx, *login, *login)
	}
	if err != nil {
		log.Error("failed to resolve user", "login", *login, "error", err)
		os.Exit(1)
	}

	if *importPath != "" {
		n, err := importSessions(ctx, store, *importPath, userID, table)
		if err != nil {
			log.Error("import failed", "path", *importPath, "imported", n, "error", err)
			os.Exit(1)
		}
		log.Info("sessions imported", "count", n)
	}

	t := tracker.New(store, table, recovery.DefaultConstants(), userID, log)
	if err := t.Load(ctx); err != nil {
		log.Error("recovery computation failed", "error", err)
		os.Exit(1)
	}
	report := t.Report()

	var out any = report
	switch {
	case *muscle != "":
		group, ok := table.Normalize(*muscle)
		if !ok {
			log.Error("unknown muscle group", "muscle", *muscle, "known", table.Groups())
			os.Exit(1)
		}
		snap, _ := report.Muscle(group)
		out = snap
	case *bodyMap:
		out = tracker.BodyMap(report, table)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}

// importSessions reads a session file and stores each one for userID.
// Primary muscles are canonicalized so the file may use aliases.
func importSessions(ctx context.Context, store *localstore.Store, path string, userID int, table *muscles.Table) (int, error) {
	sessions, err := upload.ReadSessions(path)
	if err != nil {
		return 0, err
	}

	for i, s := range sessions {
		s.UserID = userID
		for j, ex := range s.Exercises {
			if ex.PrimaryMuscle == nil {
				continue
			}
			group, ok := table.Normalize(*ex.PrimaryMuscle)
			if !ok {
				return i, fmt.Errorf("session %d exercise %d: unknown primary muscle %q", i, j, *ex.PrimaryMuscle)
			}
			s.Exercises[j].PrimaryMuscle = &group
		}
		if _, err := store.InsertSession(ctx, s); err != nil {
			return i, fmt.Errorf("session %d: %w", i, err)
		}
	}
	return len(sessions), nil
}
