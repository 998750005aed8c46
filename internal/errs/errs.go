// Package errs описывает закрытый набор отказов пробы и их коды завершения процесса.
//
// Каждый отказ несет тег Kind и полезную нагрузку (метрика, путь, HTTP-статус).
// Код завершения вычисляется один раз на границе процесса через ExitCode.
package errs

import (
	"errors"
	"fmt"
)

// Kind - тег отказа
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidParameters
	KindInvalidAuthentication
	KindMetricNotFound
	KindHTTP
	KindUnknownHost
	KindCreateDir
	KindWriteFile
	KindCorruptSnapshot
	KindInvalidValue
)

// ExitFailure - код для ошибок без тега
const ExitFailure = 1

var exitCodes = map[Kind]int{
	KindInvalidParameters:     3,
	KindInvalidAuthentication: 2,
	KindMetricNotFound:        8,
	KindHTTP:                  19,
	KindUnknownHost:           20,
	KindCreateDir:             21,
	KindWriteFile:             22,
	KindCorruptSnapshot:       23,
	KindInvalidValue:          24,
}

func (k Kind) String() string {
	switch k {
	case KindInvalidParameters:
		return "invalid_parameters"
	case KindInvalidAuthentication:
		return "invalid_authentication"
	case KindMetricNotFound:
		return "metric_not_found"
	case KindHTTP:
		return "http"
	case KindUnknownHost:
		return "unknown_host"
	case KindCreateDir:
		return "create_dir"
	case KindWriteFile:
		return "write_file"
	case KindCorruptSnapshot:
		return "corrupt_snapshot"
	case KindInvalidValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

// Error - отказ пробы
type Error struct {
	Kind   Kind
	Metric string // идентификатор метрики, если отказ относится к метрике
	Path   string // файл, каталог или таблица хранилища
	Status int    // HTTP-статус ответа
	Err    error  // исходная причина
}

// Message возвращает сообщение для коллектора, без причины
func (e *Error) Message() string {
	switch e.Kind {
	case KindInvalidParameters:
		return "Wrong number of parameters."
	case KindInvalidAuthentication:
		return "Invalid authentication."
	case KindMetricNotFound:
		return "Unable to collect metric " + e.Metric
	case KindHTTP:
		return fmt.Sprintf("Response error (%d).", e.Status)
	case KindUnknownHost:
		return "Unknown host."
	case KindCreateDir:
		return "Unable to create directory " + e.Path
	case KindWriteFile:
		return "Unable to write file " + e.Path
	case KindCorruptSnapshot:
		return "Corrupt snapshot " + e.Path
	case KindInvalidValue:
		return "Invalid value for metric " + e.Metric
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "Unknown error."
	}
}

func (e *Error) Error() string {
	if e.Err == nil || e.Kind == KindUnknown {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidParameters(err error) error {
	return &Error{Kind: KindInvalidParameters, Err: err}
}

func InvalidAuthentication() error {
	return &Error{Kind: KindInvalidAuthentication}
}

func MetricNotFound(metricID string) error {
	return &Error{Kind: KindMetricNotFound, Metric: metricID}
}

func HTTPStatus(status int) error {
	return &Error{Kind: KindHTTP, Status: status}
}

func UnknownHost(err error) error {
	return &Error{Kind: KindUnknownHost, Err: err}
}

// CreateDir - не удалось создать каталог (или схему) хранилища
func CreateDir(path string, err error) error {
	return &Error{Kind: KindCreateDir, Path: path, Err: err}
}

// WriteFile - не удалось записать снимок
func WriteFile(path string, err error) error {
	return &Error{Kind: KindWriteFile, Path: path, Err: err}
}

// CorruptSnapshot - снимок существует, не пуст, но не разбирается
func CorruptSnapshot(path string, err error) error {
	return &Error{Kind: KindCorruptSnapshot, Path: path, Err: err}
}

func InvalidValue(metricID string, err error) error {
	return &Error{Kind: KindInvalidValue, Metric: metricID, Err: err}
}

// KindOf возвращает тег первого *Error в цепочке
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsStorage сообщает, что отказ произошел при записи в хранилище
func IsStorage(err error) bool {
	k := KindOf(err)
	return k == KindCreateDir || k == KindWriteFile
}

// ExitCode переводит ошибку в код завершения процесса
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return ExitFailure
}

// Message возвращает сообщение для коллектора для любой ошибки
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
