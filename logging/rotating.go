package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "vetref-"

// rotatingFile is an io.WriteCloser that switches to a new file every ISO week and
// whenever the current file would grow past maxSize. Files older than the retention
// period are pruned once a day.
type rotatingFile struct {
	dir       string
	retention time.Duration
	maxSize   int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64
	now  func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newRotatingFile(dir string, retentionWeeks int, maxSize int64) (*rotatingFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rf := &rotatingFile{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		now:       time.Now,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	rf.mu.Lock()
	err := rf.openLocked(weekKey(rf.now()), false)
	rf.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rf.pruneLoop(ctx)
	return rf, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// nextName picks the file for week: the base file while it has room, else the next
// free _NN suffix.
func (rf *rotatingFile) nextName(week string, full bool) string {
	base := logFilePrefix + week + ".log"
	if !full {
		info, err := os.Stat(filepath.Join(rf.dir, base))
		if err != nil || rf.maxSize <= 0 || info.Size() < rf.maxSize {
			return base
		}
	}

	matches, _ := filepath.Glob(filepath.Join(rf.dir, logFilePrefix+week+"_??.log"))
	highest, highestPath := 0, ""
	for _, m := range matches {
		suffix := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), logFilePrefix+week+"_"), ".log")
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest, highestPath = n, m
		}
	}

	if !full && highestPath != "" {
		if info, err := os.Stat(highestPath); err == nil && info.Size() < rf.maxSize {
			return filepath.Base(highestPath)
		}
	}

	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest+1)
}

// openLocked closes the current file and opens the next one (caller holds mu)
func (rf *rotatingFile) openLocked(week string, full bool) error {
	if rf.file != nil {
		if err := rf.file.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		rf.file = nil
	}

	path := filepath.Join(rf.dir, rf.nextName(week, full))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rf.file = f
	rf.week = week
	rf.size = 0
	if info, err := f.Stat(); err == nil {
		rf.size = info.Size()
	}
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(rf.now())
	switch {
	case week != rf.week:
		if err := rf.openLocked(week, false); err != nil {
			return 0, err
		}
	case rf.maxSize > 0 && rf.size+int64(len(p)) > rf.maxSize:
		if err := rf.openLocked(week, true); err != nil {
			return 0, err
		}
	}

	if rf.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// prune removes rotated files whose modification time is past the retention period
func (rf *rotatingFile) prune() (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := rf.now().Add(-rf.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rf.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (rf *rotatingFile) pruneLoop(ctx context.Context) {
	defer close(rf.done)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// console only, the file handler would recurse into Write
			if n, err := rf.prune(); err != nil {
				fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
			} else if n > 0 {
				fmt.Printf("Cleaned up %d old log files\n", n)
			}
		}
	}
}

// Close stops the prune loop and closes the current file
func (rf *rotatingFile) Close() error {
	rf.cancel()
	select {
	case <-rf.done:
	case <-time.After(2 * time.Second):
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

// newLogger builds a logger writing text to stdout and JSON to the rotating file.
// When the log directory is unusable it degrades to console-only logging.
func newLogger(dir string, consoleLevel slog.Level, retentionWeeks int, maxSize int64) (*slog.Logger, io.Closer) {
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: consoleLevel})

	rf, err := newRotatingFile(dir, retentionWeeks, maxSize)
	if err != nil {
		l := slog.New(console)
		l.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		return l, nil
	}

	file := slog.NewJSONHandler(rf, &slog.HandlerOptions{Level: GetFileLogLevel()})
	return slog.New(&fanoutHandler{handlers: []slog.Handler{console, file}}), rf
}

// fanoutHandler sends each record to every handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}
