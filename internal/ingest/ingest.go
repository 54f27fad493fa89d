// Package ingest discovers source documents under a base directory.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
)

// ErrBaseDirMissing is returned when the scan root does not exist.
var ErrBaseDirMissing = errors.New("base directory does not exist")

// Source is one discovered document.
type Source struct {
	Path   string
	Format constants.Format
	Size   int64
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Hidden  uint32
	Failed  uint32
}

// Scanner walks a directory tree for supported documents.
type Scanner struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{SkipHidden: true, logger: logger}
}

// Scan walks root recursively and returns supported files sorted by path.
// Unreadable entries are counted and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Source, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, fmt.Errorf("%w: empty path", ErrBaseDirMissing)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s", ErrBaseDirMissing, root)
	}

	var out []Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Scanned++
		if walkErr != nil {
			s.logger.Warn("ingest.walk.error", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if path != root && s.SkipHidden && IsHidden(d.Name()) {
			stats.Hidden++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		format := constants.MapExtToFormat(filepath.Ext(path))
		if format == "" {
			return nil
		}
		stats.Matched++
		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		out = append(out, Source{Path: path, Format: format, Size: size})
		return nil
	})
	if err != nil {
		return out, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	s.logger.Info("ingest.scan.done", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return out, stats, nil
}

// IsHidden reports whether a directory entry name is a dotfile or an
// office lock file ("~$report.xlsx"), neither of which holds a real document.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}

// HashFile returns the hex sha256 of the file content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
