// Package upload pushes locally recorded workout sessions to a bodymap server.
//
// Sessions live in *.json files, each holding an array of sessions. Files
// that were fully uploaded are remembered by content hash, so running the
// uploader again only sends new or edited files.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/uuid"
)

// Sender delivers one session. *Client satisfies it.
type Sender interface {
	SendSession(ctx context.Context, s models.WorkoutSession) (uuid.UUID, error)
}

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent int
}

// Uploader walks a directory of session files and sends each session.
type Uploader struct {
	client Sender
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client Sender, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every pending file. A file that fails is logged and counted; the
// rest are still attempted. Only state database errors abort the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := sessionFiles(u.dir)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}

		rel, _ := filepath.Rel(u.dir, path)
		hash, err := HashFile(path)
		if err != nil {
			u.log.Error("hashing file", "file", rel, "error", err)
			u.stats.FilesErrored++
			continue
		}

		done, err := u.state.IsUploaded(ctx, rel, hash)
		if err != nil {
			return &u.stats, err
		}
		if done {
			u.log.Debug("already uploaded", "file", rel)
			u.stats.FilesSkipped++
			continue
		}

		n, err := u.uploadFile(ctx, path)
		u.stats.SessionsSent += n
		if err != nil {
			u.log.Error("upload failed", "file", rel, "sent", n, "error", err)
			u.stats.FilesErrored++
			continue
		}

		if u.dryRun {
			u.log.Info("dry run: would upload", "file", rel, "sessions", n)
			continue
		}
		if err := u.state.MarkUploaded(ctx, rel, hash, n); err != nil {
			return &u.stats, err
		}
		u.log.Info("uploaded", "file", rel, "sessions", n)
		u.stats.FilesUploaded++
	}

	return &u.stats, nil
}

// uploadFile sends every session in path and returns how many were sent.
// In dry-run mode it only parses and validates.
func (u *Uploader) uploadFile(ctx context.Context, path string) (int, error) {
	sessions, err := ReadSessions(path)
	if err != nil {
		return 0, err
	}
	if u.dryRun {
		return len(sessions), nil
	}

	for i, s := range sessions {
		id, err := u.client.SendSession(ctx, s)
		if err != nil {
			return i, fmt.Errorf("session %d (%s): %w", i, s.Date.Format("2006-01-02"), err)
		}
		u.log.Debug("session stored", "id", id, "date", s.Date)
	}
	return len(sessions), nil
}

// ReadSessions parses a JSON array of sessions. Every session must carry a date.
func ReadSessions(path string) ([]models.WorkoutSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var sessions []models.WorkoutSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, s := range sessions {
		if s.Date.IsZero() {
			return nil, fmt.Errorf("%s: session %d has no date", path, i)
		}
	}
	return sessions, nil
}

// sessionFiles lists *.json files under dir in lexical order.
func sessionFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
