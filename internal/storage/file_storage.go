package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/models"
	"go.uber.org/zap"
)

// FileStore - хранилище снимков в файлах, по одному файлу на цель
type FileStore struct {
	dir string
}

// NewFileStore - конструктор для FileStore
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path возвращает путь к файлу снимка цели
func (s *FileStore) Path(key models.TargetKey) string {
	return filepath.Join(s.dir, key.FileName())
}

// Load - загружает снимок цели из файла
func (s *FileStore) Load(_ context.Context, key models.TargetKey) (models.Snapshot, bool, error) {
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Нет файла или каталога - первый запуск для цели
		logger.Log.Debug("snapshot not found", zap.String("path", path))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		logger.Log.Debug("snapshot is empty", zap.String("path", path))
		return nil, false, nil
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, false, errs.CorruptSnapshot(path, err)
	}

	return snapshot, true, nil
}

// Save - сохраняет снимок цели в файл, создавая каталог при необходимости.
// Снимок пишется во временный файл рядом и переименовывается поверх прежнего.
func (s *FileStore) Save(_ context.Context, key models.TargetKey, snapshot models.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errs.CreateDir(s.dir, err)
	}

	path := s.Path(key)

	file, err := os.CreateTemp(s.dir, key.FileName()+".*.tmp")
	if err != nil {
		return errs.WriteFile(path, err)
	}
	tmp := file.Name()

	if err := writeSnapshot(file, snapshot); err != nil {
		removeTemp(tmp)
		return errs.WriteFile(path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		removeTemp(tmp)
		return errs.WriteFile(path, err)
	}

	logger.Log.Debug("snapshot saved",
		zap.String("path", path),
		zap.Int("observations", len(snapshot)),
	)
	return nil
}

// writeSnapshot кодирует снимок и закрывает файл
func writeSnapshot(file *os.File, snapshot models.Snapshot) error {
	if err := json.NewEncoder(file).Encode(normalize(snapshot)); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Chmod(0644); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Log.Warn("failed to remove temporary snapshot", zap.String("path", path), zap.Error(err))
	}
}

// decodeSnapshot разбирает и проверяет JSON-снимок
func decodeSnapshot(data []byte) (models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return normalize(snapshot), nil
}

// normalize приводит метки времени к виду, который переживает кодирование
func normalize(snapshot models.Snapshot) models.Snapshot {
	out := make(models.Snapshot, len(snapshot))
	for i, o := range snapshot {
		out[i] = models.NewObservation(o.ID, o.Timestamp, o.Value)
	}
	return out
}
