package storage

import (
	"context"

	"github.com/25x8/nginx-probe/internal/models"
)

// Store определяет интерфейс долговременного хранения снимков по целям.
// Реализации хранят ровно один снимок на TargetKey и полностью заменяют его при записи.
type Store interface {
	// Load возвращает последний сохраненный снимок цели.
	// found == false, если снимка нет (нет файла, каталога или файл пуст).
	// Нечитаемый снимок возвращается как ошибка errs.KindCorruptSnapshot.
	Load(ctx context.Context, key models.TargetKey) (snapshot models.Snapshot, found bool, err error)

	// Save полностью перезаписывает снимок цели.
	// Возвращает errs.KindCreateDir или errs.KindWriteFile при отказе.
	Save(ctx context.Context, key models.TargetKey, snapshot models.Snapshot) error
}
