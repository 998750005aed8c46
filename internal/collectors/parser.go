package collectors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Readings - значения полей stub_status по имени поля
type Readings map[string]string

// ParseStubStatus разбирает ответ модуля ngx_http_stub_status_module:
//
//	Active connections: 291
//	server accepts handled requests
//	 16630948 16630948 31070465
//	Reading: 6 Writing: 179 Waiting: 106
//
// Пары "Ключ: значение" дают поле по первому слову ключа, строка заголовков
// без двоеточий сопоставляется со следующей за ней строкой чисел.
// Нераспознанные строки пропускаются, отсутствующих полей в результате нет.
func ParseStubStatus(r io.Reader) (Readings, error) {
	readings := make(Readings)
	scanner := bufio.NewScanner(r)

	var header []string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if allNumeric(fields) {
			if header != nil {
				assignColumns(readings, header, fields)
				header = nil
			}
			continue
		}
		header = nil

		if strings.Contains(scanner.Text(), ":") {
			parsePairs(readings, fields)
			continue
		}

		header = fields
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stub_status body: %w", err)
	}
	return readings, nil
}

// parsePairs разбирает "Reading: 6 Writing: 179 Waiting: 106"
func parsePairs(readings Readings, fields []string) {
	var key string
	for i := 0; i < len(fields); i++ {
		word := fields[i]
		if key == "" {
			key = fieldName(word)
		}
		if !strings.HasSuffix(word, ":") {
			continue
		}
		if i+1 < len(fields) && isNumeric(fields[i+1]) {
			readings[key] = fields[i+1]
			i++
		}
		key = ""
	}
}

// assignColumns сопоставляет значения с последними колонками заголовка,
// первая колонка "server" в nginx значения не имеет
func assignColumns(readings Readings, header, values []string) {
	if len(header) < len(values) {
		values = values[:len(header)]
	}
	offset := len(header) - len(values)
	for i, v := range values {
		readings[fieldName(header[offset+i])] = v
	}
}

func fieldName(word string) string {
	return strings.ToLower(strings.TrimSuffix(word, ":"))
}

func allNumeric(fields []string) bool {
	for _, f := range fields {
		if !isNumeric(f) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
