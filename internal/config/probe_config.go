package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Значения по умолчанию
const (
	DefaultOutputMode = "pipe"
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 2 * time.Second
	DefaultLogLevel   = "warn"
	DefaultScheme     = "http"
)

// FileConfig - содержимое JSON-файла конфигурации
type FileConfig struct {
	OutputMode  string `json:"output_mode"`
	StateDir    string `json:"state_dir"`
	DatabaseDSN string `json:"database_dsn"`
	Timeout     string `json:"timeout"`
	RetryDelay  string `json:"retry_delay"`
	LogLevel    string `json:"log_level"`
	Scheme      string `json:"scheme"`
}

// executable подменяется в тестах
var executable = os.Executable

// DefaultStateDir возвращает каталог снимков: tmp рядом с каталогом бинарника
func DefaultStateDir() string {
	exe, err := executable()
	if err != nil {
		return filepath.Join(os.TempDir(), "nginx-probe")
	}
	return filepath.Join(filepath.Dir(exe), "..", "tmp")
}

// LoadProbeConfig читает файл конфигурации поверх значений по умолчанию.
// Пустой путь возвращает только значения по умолчанию.
func LoadProbeConfig(filePath string) (*FileConfig, error) {
	config := &FileConfig{
		OutputMode: DefaultOutputMode,
		StateDir:   DefaultStateDir(),
		Timeout:    DefaultTimeout.String(),
		RetryDelay: DefaultRetryDelay.String(),
		LogLevel:   DefaultLogLevel,
		Scheme:     DefaultScheme,
	}

	if filePath != "" {
		file, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filePath, err)
		}
	}

	return config, nil
}

// ParseDuration принимает длительность Go ("1500ms", "2s") или целое число секунд
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if sec, err := strconv.Atoi(value); err == nil {
		return time.Duration(sec) * time.Second, nil
	}
	return time.ParseDuration(value)
}
