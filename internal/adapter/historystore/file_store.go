package historystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"marketcolor/internal/domain"
)

// FileStore keeps the single history record as a JSON file. Writes go to a
// temp file in the same directory and are renamed over the old record, so a
// crash never leaves a half-written file behind.
type FileStore struct {
	path   string
	logger *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

var _ domain.HistoryStore = (*FileStore)(nil)

func (s *FileStore) Path() string { return s.path }

// Load returns the zero record when the file is missing or unreadable.
func (s *FileStore) Load(ctx context.Context) domain.HistoryRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.InfoContext(ctx, "history_not_found", slog.String("path", s.path))
		} else {
			s.logger.WarnContext(ctx, "history_read_failed", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return domain.HistoryRecord{}
	}
	return decodeRecord(ctx, s.logger, data, s.path)
}

func (s *FileStore) Save(ctx context.Context, record domain.HistoryRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}

	s.logger.InfoContext(ctx, "history_saved",
		slog.String("path", s.path),
		slog.Int("headlines", len(record.Headlines)),
		slog.Int("tickers", len(record.Tickers)))
	return nil
}

func encodeRecord(record domain.HistoryRecord) ([]byte, error) {
	if record.Headlines == nil {
		record.Headlines = []string{}
	}
	if record.Tickers == nil {
		record.Tickers = []string{}
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return data, nil
}

func decodeRecord(ctx context.Context, logger *slog.Logger, data []byte, source string) domain.HistoryRecord {
	var record domain.HistoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		logger.WarnContext(ctx, "history_malformed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return domain.HistoryRecord{}
	}
	return record
}
