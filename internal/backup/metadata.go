package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata describes a single rules-tree backup.
type Metadata struct {
	ID          string    `json:"id"`          // Timestamp-based identifier
	SourcePath  string    `json:"source_path"` // Original rules tree
	BackupPath  string    `json:"backup_path"` // Copied tree location
	CreatedAt   time.Time `json:"created_at"`
	Files       int       `json:"files"` // File count in the tree
	Size        int64     `json:"size"`  // Total bytes copied
	Hash        string    `json:"hash"`  // SHA256 over paths and contents
	Description string    `json:"description,omitempty"`
}

// Index maintains an index of all backups under one backups root.
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"` // Key: backup ID
}

const (
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"
	// IndexFilename is the name of the index file
	IndexFilename = "index.json"
)

// LoadIndex loads the backup index from backupsRoot. A missing index file
// yields an empty index.
func LoadIndex(backupsRoot string) (*Index, error) {
	indexPath := filepath.Join(backupsRoot, IndexFilename)

	// #nosec G304 - indexPath is constructed from the configured backups root
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{
				Version: IndexVersion,
				Updated: time.Now(),
				Backups: make(map[string]Metadata),
			}, nil
		}
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}

	return &index, nil
}

// SaveIndex writes the backup index to backupsRoot.
func SaveIndex(backupsRoot string, index *Index) error {
	if err := os.MkdirAll(backupsRoot, DirPerm); err != nil {
		return fmt.Errorf("failed to create backups directory: %w", err)
	}

	index.Updated = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	indexPath := filepath.Join(backupsRoot, IndexFilename)
	if err := os.WriteFile(indexPath, data, FilePerm); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

// AddBackup records metadata in the index and saves it.
func (i *Index) AddBackup(backupsRoot string, m Metadata) error {
	i.Backups[m.ID] = m
	return SaveIndex(backupsRoot, i)
}

// RemoveBackup deletes metadata from the index and saves it.
func (i *Index) RemoveBackup(backupsRoot, id string) error {
	if _, ok := i.Backups[id]; !ok {
		return fmt.Errorf("backup %q not found", id)
	}
	delete(i.Backups, id)
	return SaveIndex(backupsRoot, i)
}
