package loader

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WatcherConfig controls the batch ingest loop.
type WatcherConfig struct {
	SourceDir  string
	ArchiveDir string
	BadDir     string
	// Settle is how long a file must stay unmodified before it is picked up,
	// so partially copied files are not ingested.
	Settle time.Duration
}

// Watcher polls a source directory and feeds settled PDF files through the
// ingest pipeline, archiving them afterwards. Files that fail ingestion land
// in the bad directory instead.
type Watcher struct {
	logger    *slog.Logger
	cfg       WatcherConfig
	svc       *Service
	firstSeen map[string]time.Time
}

func NewWatcher(cfg WatcherConfig, svc *Service) (*Watcher, error) {
	for _, dir := range []string{cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Watcher{
		logger:    slog.Default(),
		cfg:       cfg,
		svc:       svc,
		firstSeen: make(map[string]time.Time),
	}, nil
}

// Run blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("watching source directory", "dir", w.cfg.SourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.SourceDir)
	if err != nil {
		w.logger.Error("read source directory", "error", err)
		return
	}

	current := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.SourceDir, entry.Name())
		current[path] = true

		seen, ok := w.firstSeen[path]
		if !ok {
			w.firstSeen[path] = time.Now()
			w.logger.Info("new file detected", "path", path)
			continue
		}
		if time.Since(seen) < w.cfg.Settle {
			continue
		}

		w.process(ctx, path)
		delete(w.firstSeen, path)
	}

	// Forget files that disappeared from the directory.
	for path := range w.firstSeen {
		if !current[path] {
			delete(w.firstSeen, path)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	docID := FileDocID(path)
	res, err := w.svc.Ingest(ctx, path, docID)
	if err != nil {
		w.logger.Error("ingest failed", "path", path, "error", err)
		w.moveTo(w.cfg.BadDir, path)
		return
	}
	w.logger.Info("file ingested", "path", path, "doc_id", docID, "chunks", res.ChunkCount)
	w.moveTo(w.cfg.ArchiveDir, path)
}

// FileDocID hashes the file name so re-dropping a modified file re-upserts
// the same chunk ids instead of duplicating them.
func FileDocID(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return fmt.Sprintf("%x", md5.Sum([]byte(name)))
}

func (w *Watcher) moveTo(destRoot, path string) {
	destDir := filepath.Join(destRoot, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		w.logger.Error("create archive directory", "error", err)
		return
	}

	destPath := filepath.Join(destDir, filepath.Base(path))
	for counter := 1; ; counter++ {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(filepath.Base(path), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}

	if err := copyFile(path, destPath); err != nil {
		w.logger.Error("move file", "path", path, "error", err)
		return
	}
	os.Remove(path)
	w.logger.Info("file archived", "dest", destPath)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
