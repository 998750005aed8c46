package config

import (
	"fmt"
	"strings"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/models"
)

// PositionalArgs - число позиционных аргументов:
// METRIC_STATE HOST PORT PATH USER_NAME PASS_WORD
const PositionalArgs = 6

// DefaultPort - порт, если PORT пуст
const DefaultPort = "80"

// Target - позиционная часть командной строки
type Target struct {
	Mask     models.Mask
	Host     string
	Port     string
	Path     string
	Username string
	Password string
}

// ParseTarget разбирает позиционные аргументы
func ParseTarget(args []string) (Target, error) {
	if len(args) != PositionalArgs {
		return Target{}, errs.InvalidParameters(fmt.Errorf("expected %d arguments, got %d", PositionalArgs, len(args)))
	}

	port := args[2]
	if port == "" {
		port = DefaultPort
	}

	t := Target{
		Mask:     ParseMask(args[0]),
		Host:     args[1],
		Port:     port,
		Path:     args[3],
		Username: credential(args[4]),
		Password: credential(args[5]),
	}

	// {0} - неподставленный шаблон, авторизации нет
	if t.Username == "{0}" {
		t.Username, t.Password = "", ""
	}

	return t, nil
}

// ParseMask разбирает METRIC_STATE: "1" включает метрику на позиции, остальное выключает
func ParseMask(state string) models.Mask {
	state = strings.ReplaceAll(state, `"`, "")
	if state == "" {
		return nil
	}

	tokens := strings.Split(state, ",")
	mask := make(models.Mask, len(tokens))
	for i, tok := range tokens {
		mask[i] = strings.TrimSpace(tok) == "1"
	}
	return mask
}

// credential очищает значения, которыми агент передает пустую строку
func credential(value string) string {
	if value == `""` || value == `"` {
		return ""
	}
	return value
}
