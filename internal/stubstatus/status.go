// Package stubstatus эмулирует модуль ngx_http_stub_status_module.
//
// Эмулятор используется интеграционными тестами пробы и бинарником cmd/stubstatus
// для локальных запусков без настоящего nginx.
package stubstatus

import (
	"fmt"

	"github.com/25x8/nginx-probe/internal/models"
)

// Status - значения, которые отдает stub_status
type Status struct {
	Active   int64
	Accepts  int64
	Handled  int64
	Requests int64
	Reading  int64
	Writing  int64
	Waiting  int64
}

// Render печатает Status в формате nginx
func (s Status) Render() string {
	return fmt.Sprintf("Active connections: %d \n"+
		"server accepts handled requests\n"+
		" %d %d %d \n"+
		"Reading: %d Writing: %d Waiting: %d \n",
		s.Active, s.Accepts, s.Handled, s.Requests, s.Reading, s.Writing, s.Waiting)
}

// Fields возвращает значения по именам полей реестра
func (s Status) Fields() map[string]int64 {
	return map[string]int64{
		models.FieldActive:   s.Active,
		models.FieldAccepts:  s.Accepts,
		models.FieldHandled:  s.Handled,
		models.FieldRequests: s.Requests,
		models.FieldReading:  s.Reading,
		models.FieldWriting:  s.Writing,
		models.FieldWaiting:  s.Waiting,
	}
}
