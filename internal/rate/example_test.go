package rate_test

import (
	"fmt"
	"time"

	"github.com/25x8/nginx-probe/internal/models"
	"github.com/25x8/nginx-probe/internal/rate"
)

// ExampleCompute демонстрирует вычисление скорости counter-метрики
// для обычного прироста и для сброса счетчика.
func ExampleCompute() {
	t0 := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	previous := models.NewObservation("172:Requests/Sec:4", t0, "100")

	// Прирост за минуту
	value, _ := rate.Compute(&previous, models.NewObservation("172:Requests/Sec:4", t0.Add(time.Minute), "160"))
	fmt.Println(value)

	// Сброс счетчика после перезапуска nginx
	value, _ = rate.Compute(&previous, models.NewObservation("172:Requests/Sec:4", t0.Add(time.Minute), "10"))
	fmt.Println(value)

	// Первое наблюдение
	value, _ = rate.Compute(nil, previous)
	fmt.Println(value)

	// Output:
	// 1.00
	// 10.00
	// 0
}
