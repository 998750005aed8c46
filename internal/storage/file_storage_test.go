package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = models.TargetKey{Host: "10.10.2.5", Port: "8080"}

func testSnapshot() models.Snapshot {
	ts := time.Date(2026, 10, 14, 12, 0, 0, 250*int(time.Millisecond), time.UTC)
	return models.Snapshot{
		models.NewObservation("27:Active Connections:4", ts, "291"),
		models.NewObservation("110:Accepted Connections/Sec:4", ts, "16630948"),
		models.NewObservation("172:Requests/Sec:4", ts, "31070465"),
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, testKey, testSnapshot())
	require.NoError(t, err)

	loaded, found, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testSnapshot(), loaded)

	// Повторная загрузка без записи возвращает тот же снимок
	again, found, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, loaded, again)
}

func TestFileStore_RoundTripLocalTime(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	// Время с монотонной составляющей и локальной зоной
	snapshot := models.Snapshot{models.NewObservation("A", time.Now(), "1")}
	require.NoError(t, store.Save(ctx, testKey, snapshot))

	loaded, found, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snapshot, loaded)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testKey, testSnapshot()))

	ts := time.Date(2026, 10, 14, 12, 1, 0, 0, time.UTC)
	second := models.Snapshot{models.NewObservation("58:Waiting:4", ts, "106")}
	require.NoError(t, store.Save(ctx, testKey, second))

	loaded, found, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, second, loaded)
}

func TestFileStore_SeparateTargets(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testKey, testSnapshot()))

	other := models.TargetKey{Host: "10.10.2.5", Port: "8081"}
	_, found, err := store.Load(ctx, other)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotEqual(t, store.Path(testKey), store.Path(other))
}

func TestFileStore_LoadAbsent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name    string
		dir     string
		content *string
	}{
		{name: "Missing directory", dir: filepath.Join(dir, "missing", "tmp")},
		{name: "Missing file", dir: dir},
		{name: "Empty file", dir: filepath.Join(dir, "empty"), content: strPtr("")},
		{name: "Whitespace file", dir: filepath.Join(dir, "blank"), content: strPtr(" \n\t\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewFileStore(tt.dir)
			if tt.content != nil {
				require.NoError(t, os.MkdirAll(tt.dir, 0755))
				require.NoError(t, os.WriteFile(store.Path(testKey), []byte(*tt.content), 0644))
			}

			snapshot, found, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, snapshot)
		})
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"Invalid JSON", "{invalid json"},
		{"Wrong shape", `{"id":"A"}`},
		{"Duplicate ids", `[{"id":"A","ts":"2026-10-14T12:00:00Z","value":"1"},{"id":"A","ts":"2026-10-14T12:00:00Z","value":"2"}]`},
		{"Non numeric value", `[{"id":"A","ts":"2026-10-14T12:00:00Z","value":"abc"}]`},
		{"Missing timestamp", `[{"id":"A","value":"1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewFileStore(dir)
			path := store.Path(testKey)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, found, err := store.Load(ctx, testKey)
			require.Error(t, err)
			assert.False(t, found)
			assert.Equal(t, errs.KindCorruptSnapshot, errs.KindOf(err))

			// Битый снимок не удаляется
			_, statErr := os.Stat(path)
			assert.NoError(t, statErr)
		})
	}
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tmp")
	store := NewFileStore(dir)

	require.NoError(t, store.Save(context.Background(), testKey, testSnapshot()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(dir, "nginx_10.10.2.5_8080.dat"))
}

func TestFileStore_SaveCreateDirError(t *testing.T) {
	// Обычный файл на месте каталога
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewFileStore(filepath.Join(blocker, "tmp"))
	err := store.Save(context.Background(), testKey, testSnapshot())
	require.Error(t, err)
	assert.Equal(t, errs.KindCreateDir, errs.KindOf(err))
	assert.Equal(t, 21, errs.ExitCode(err))
}

func TestFileStore_SaveWriteFileError(t *testing.T) {
	// Каталог на месте файла снимка
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, os.Mkdir(store.Path(testKey), 0755))

	err := store.Save(context.Background(), testKey, testSnapshot())
	require.Error(t, err)
	assert.Equal(t, errs.KindWriteFile, errs.KindOf(err))
	assert.Equal(t, 22, errs.ExitCode(err))
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testKey, testSnapshot()))
	require.NoError(t, store.Save(ctx, testKey, models.Snapshot{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "nginx_10.10.2.5_8080.dat", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestFileStore_FailedSaveKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	other := models.TargetKey{Host: "10.10.2.5", Port: "8081"}
	require.NoError(t, store.Save(ctx, other, testSnapshot()))

	// Каталог на месте файла снимка: переименование не проходит
	require.NoError(t, os.Mkdir(store.Path(testKey), 0755))
	err := store.Save(ctx, testKey, testSnapshot())
	require.Error(t, err)
	assert.Equal(t, errs.KindWriteFile, errs.KindOf(err))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	loaded, found, err := store.Load(ctx, other)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testSnapshot(), loaded)
}

func TestFileStore_EmptySnapshotRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testKey, models.Snapshot{}))

	snapshot, found, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, snapshot)
}

func strPtr(s string) *string {
	return &s
}
