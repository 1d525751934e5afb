package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	ExercisesReceived int
	ExercisesUpserted int64
}

// Uploader walks a directory of catalog CSV exports and POSTs files that
// changed since their last upload to the RepForge server.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. A failed file is logged and counted;
// the remaining files are still attempted.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := findCSV(u.root)
	if err != nil {
		return &u.stats, fmt.Errorf("scanning %s: %w", u.root, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		u.processFile(ctx, f)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) {
	relPath, _ := filepath.Rel(u.root, path)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if uploaded {
		u.stats.FilesSkipped++
		return
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "bytes", info.Size())
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	result, err := u.client.SendCatalog(ctx, data)
	if err != nil {
		u.log.Error("upload failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return
	}

	u.stats.FilesUploaded++
	u.stats.ExercisesReceived += result.ExercisesReceived
	u.stats.ExercisesUpserted += result.ExercisesUpserted
	if err := u.state.MarkUploaded(relPath, info.Size(), hash, result.ExercisesUpserted); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.log.Info("uploaded catalog",
		"file", relPath,
		"received", result.ExercisesReceived,
		"upserted", result.ExercisesUpserted,
	)
}

// findCSV returns every .csv file under root in lexical order. Hidden
// directories are skipped.
func findCSV(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
