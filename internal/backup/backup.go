// Package backup creates timestamped full copies of the rules tree before
// structural migration mutates it.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauern/rulesmith/internal/logging"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
)

// CreateTreeBackup copies sourceDir recursively into a timestamped directory
// under backupsRoot and records it in the index. The copy completes, and the
// index entry is written, before the caller mutates the source tree; an
// interruption before any mutation therefore leaves the original fully
// intact.
func CreateTreeBackup(sourceDir, backupsRoot, description string) (*Metadata, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source %q: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %q is not a directory", sourceDir)
	}

	if err := os.MkdirAll(backupsRoot, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	id := time.Now().Format("20060102-150405")
	destDir := filepath.Join(backupsRoot, id)
	if _, err := os.Stat(destDir); err == nil {
		return nil, fmt.Errorf("backup %q already exists", destDir)
	}

	files, size, hash, err := copyTree(sourceDir, destDir)
	if err != nil {
		return nil, err
	}

	metadata := &Metadata{
		ID:          id,
		SourcePath:  sourceDir,
		BackupPath:  destDir,
		CreatedAt:   time.Now(),
		Files:       files,
		Size:        size,
		Hash:        hash,
		Description: description,
	}

	index, err := LoadIndex(backupsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}
	if err := index.AddBackup(backupsRoot, *metadata); err != nil {
		return nil, fmt.Errorf("failed to record backup in index: %w", err)
	}

	logging.Info("created rules tree backup",
		logging.Path(destDir),
		logging.Count(files),
	)

	return metadata, nil
}

// copyTree copies every file under src to dest, preserving the relative
// layout. It returns the file count, total byte size, and a sha256 digest
// over the sorted relative paths and contents, which List and verification
// use to describe the tree.
func copyTree(src, dest string) (int, int64, string, error) {
	var relPaths []string
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to walk source tree %q: %w", src, err)
	}
	sort.Strings(relPaths)

	digest := sha256.New()
	var size int64

	for _, rel := range relPaths {
		srcPath := filepath.Join(src, rel)
		destPath := filepath.Join(dest, rel)

		if err := os.MkdirAll(filepath.Dir(destPath), DirPerm); err != nil {
			return 0, 0, "", fmt.Errorf("failed to create backup directory: %w", err)
		}

		// #nosec G304 - srcPath is discovered under the rules tree being backed up
		content, err := os.ReadFile(srcPath)
		if err != nil {
			return 0, 0, "", fmt.Errorf("failed to read %q: %w", srcPath, err)
		}
		if err := os.WriteFile(destPath, content, FilePerm); err != nil {
			return 0, 0, "", fmt.Errorf("failed to write %q: %w", destPath, err)
		}

		_, _ = io.WriteString(digest, rel+"\x00")
		_, _ = digest.Write(content)
		size += int64(len(content))
	}

	return len(relPaths), size, hex.EncodeToString(digest.Sum(nil)), nil
}

// List returns all recorded backups, newest first.
func List(backupsRoot string) ([]Metadata, error) {
	index, err := LoadIndex(backupsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	backups := make([]Metadata, 0, len(index.Backups))
	for _, m := range index.Backups {
		backups = append(backups, m)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}
