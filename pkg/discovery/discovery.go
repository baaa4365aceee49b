// Package discovery finds JSONL import files under configured
// directories.
//
// Directories are walked recursively; hidden directories are skipped and
// only regular files ending in .jsonl are returned.
//
// Example usage:
//
//	d := discovery.New([]string{"~/study-logs"}, log)
//	files, err := d.Discover()
//	if err != nil {
//	    return err
//	}
//	for _, f := range files {
//	    fmt.Printf("%s (%d bytes)\n", f.Path, f.Size)
//	}
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extension is the file suffix of import files.
const Extension = ".jsonl"

// Logger defines the logging interface used by the discovery package.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ImportFile represents a discovered import file.
type ImportFile struct {
	// Path is the absolute path to the JSONL file.
	Path string

	// Root is the configured directory the file was found under.
	Root string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// Discoverer provides methods for discovering import files.
type Discoverer interface {
	// Discover scans every configured directory.
	//
	// Missing directories are logged and skipped. Results are sorted by
	// path so that imports run in a stable order.
	Discover() ([]ImportFile, error)

	// DiscoverDir scans a single directory.
	//
	// Returns ErrDirNotFound if the directory does not exist.
	DiscoverDir(dir string) ([]ImportFile, error)

	// Dirs returns the configured directories with ~ expanded.
	Dirs() []string
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	baseDirs []string
	logger   Logger
}

// New creates a new Discoverer over baseDirs.
func New(baseDirs []string, logger Logger) Discoverer {
	return &discoverer{
		baseDirs: baseDirs,
		logger:   logger,
	}
}

// Dirs implements Discoverer.Dirs.
func (d *discoverer) Dirs() []string {
	dirs := make([]string, 0, len(d.baseDirs))
	for _, dir := range d.baseDirs {
		dirs = append(dirs, ExpandHome(dir))
	}
	return dirs
}

// Discover implements Discoverer.Discover.
func (d *discoverer) Discover() ([]ImportFile, error) {
	var all []ImportFile

	for _, dir := range d.Dirs() {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				d.logger.Warn("directory not found, skipping", "path", dir)
				continue
			}
			return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
		}

		files, err := d.scan(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
		}
		all = append(all, files...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })

	d.logger.Info("discovery complete", "total_files", len(all))
	return all, nil
}

// DiscoverDir implements Discoverer.DiscoverDir.
func (d *discoverer) DiscoverDir(dir string) ([]ImportFile, error) {
	expanded := ExpandHome(dir)

	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, expanded)
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", expanded, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, expanded)
	}

	files, err := d.scan(expanded)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// scan walks root collecting import files.
func (d *discoverer) scan(root string) ([]ImportFile, error) {
	files := make([]ImportFile, 0, 10)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	err = filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			d.logger.Warn("failed to read path", "path", path, "error", walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if path != absRoot && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if !IsImportFile(path) || !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			d.logger.Warn("failed to get file info",
				"path", path,
				"error", err)
			return nil
		}

		files = append(files, ImportFile{
			Path:    path,
			Root:    absRoot,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("scanned directory",
		"path", absRoot,
		"files_found", len(files))

	return files, nil
}

// IsImportFile reports whether path names an import file (not hidden,
// ending in .jsonl).
func IsImportFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, Extension) && !strings.HasPrefix(name, ".")
}

// ExpandHome expands ~ in file paths to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
