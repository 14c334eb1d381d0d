package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"billing/internal/logger"
	"billing/pkg/models"
)

// JSONStore keeps the snapshot in a single indented JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is created
// on the first Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields an empty snapshot. A file that
// is not valid JSON is copied to <path>.corrupt and an empty snapshot is
// returned. Records written by older versions are upgraded and saved back.
func (s *JSONStore) Load(ctx context.Context) (*models.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logger.WithComponent("store")

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", s.path).Msg("no data file yet, starting empty")
		return models.NewRecords(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		backup := s.path + ".corrupt"
		if werr := os.WriteFile(backup, data, 0o644); werr != nil {
			log.Error().Err(werr).Str("path", backup).Msg("failed to back up unreadable data file")
		}
		log.Warn().
			Err(err).
			Str("path", s.path).
			Str("backup", backup).
			Msg("data file is not valid JSON, starting with empty records")
		return models.NewRecords(), nil
	}

	records, changed := normalize(snapshot)
	if changed {
		log.Info().Str("path", s.path).Msg("upgrading records written by an older version")
		if err := s.Save(ctx, records); err != nil {
			return nil, fmt.Errorf("save upgraded records: %w", err)
		}
	}

	return records, nil
}

// Save writes records to a temporary file next to the target and renames it
// into place.
func (s *JSONStore) Save(ctx context.Context, records *models.Records) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		return ErrNilRecords
	}

	data, err := json.MarshalIndent(canonical(records), "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}
