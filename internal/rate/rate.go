// Package rate вычисляет значения counter-метрик в секунду относительно прошлого снимка.
package rate

import (
	"math"
	"strconv"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/models"
)

// Zero - значение, когда скорость вычислить нельзя
const Zero = "0"

// Compute возвращает итоговое значение counter-метрики.
//
//   - previous == nil: первое наблюдение метрики, результат "0";
//   - current < previous: сброс счетчика, результат - текущее значение;
//   - иначе (current - previous) / elapsed, где elapsed - секунды между метками времени.
//
// Если elapsed <= 0 (сдвиг часов или два запуска в одну миллисекунду),
// прошлое наблюдение считается отсутствующим.
func Compute(previous *models.Observation, current models.Observation) (string, error) {
	cur, err := current.Float()
	if err != nil {
		return "", errs.InvalidValue(current.ID, err)
	}

	if previous == nil {
		return Zero, nil
	}

	prev, err := previous.Float()
	if err != nil {
		return "", errs.InvalidValue(previous.ID, err)
	}

	if cur < prev {
		return Format(cur), nil
	}

	elapsed := current.Timestamp.Sub(previous.Timestamp).Seconds()
	if elapsed <= 0 {
		return Zero, nil
	}

	return Format(PerSecond(prev, cur, elapsed)), nil
}

// PerSecond считает скорость изменения; elapsed должен быть положительным
func PerSecond(prev, cur, elapsed float64) float64 {
	return (cur - prev) / elapsed
}

// Round округляет до двух знаков после запятой
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format округляет и печатает значение с двумя знаками после запятой
func Format(v float64) string {
	return strconv.FormatFloat(Round(v), 'f', 2, 64)
}
