package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/25x8/nginx-probe/internal/errs"
)

// ProbeConfig - итоговая конфигурация одного запуска пробы
type ProbeConfig struct {
	Target

	OutputMode  string
	StateDir    string
	DatabaseDSN string
	Timeout     time.Duration
	RetryDelay  time.Duration
	LogLevel    string
	Scheme      string
	ShowVersion bool
}

// Parse собирает конфигурацию. Приоритет: значения по умолчанию, файл,
// флаги, переменные окружения. При -h возвращает flag.ErrHelp.
func Parse(name string, args []string, getenv func(string) string, output io.Writer) (*ProbeConfig, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <METRIC_STATE> <HOST> <PORT> <PATH> <USER_NAME> <PASS_WORD>\n", name)
		fs.PrintDefaults()
	}

	var (
		configFlag     string
		outputFlag     string
		stateDirFlag   string
		dsnFlag        string
		timeoutFlag    string
		retryDelayFlag string
		logLevelFlag   string
		schemeFlag     string
		versionFlag    bool
	)

	fs.StringVar(&configFlag, "c", "", "Path to JSON config file")
	fs.StringVar(&configFlag, "config", "", "Path to JSON config file (alias for -c)")
	fs.StringVar(&outputFlag, "o", DefaultOutputMode, "Output mode: pipe or legacy")
	fs.StringVar(&stateDirFlag, "s", "", "Snapshot directory (default <exe dir>/../tmp)")
	fs.StringVar(&dsnFlag, "d", "", "PostgreSQL connection string, replaces the snapshot directory")
	fs.StringVar(&timeoutFlag, "t", DefaultTimeout.String(), "HTTP request timeout")
	fs.StringVar(&retryDelayFlag, "retry-delay", DefaultRetryDelay.String(), "Delay before the second run after bootstrap, 0 disables it")
	fs.StringVar(&logLevelFlag, "l", DefaultLogLevel, "Log level")
	fs.StringVar(&schemeFlag, "scheme", DefaultScheme, "stub_status URL scheme: http or https")
	fs.BoolVar(&versionFlag, "v", false, "Print build info and exit")
	fs.BoolVar(&versionFlag, "version", false, "Print build info and exit (alias for -v)")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, errs.InvalidParameters(err)
	}

	cfg := &ProbeConfig{ShowVersion: versionFlag}
	if cfg.ShowVersion {
		return cfg, nil
	}

	target, err := ParseTarget(fs.Args())
	if err != nil {
		return nil, err
	}
	cfg.Target = target

	// Путь к файлу конфигурации
	configPath := configFlag
	if envConfig := getenv("CONFIG"); envConfig != "" {
		configPath = envConfig
	}

	file, err := LoadProbeConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Флаги, заданные явно, перекрывают файл
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	pick := func(fileValue, flagValue string, flagNames ...string) string {
		for _, n := range flagNames {
			if set[n] {
				return flagValue
			}
		}
		return fileValue
	}

	cfg.OutputMode = pick(file.OutputMode, outputFlag, "o")
	cfg.StateDir = pick(file.StateDir, stateDirFlag, "s")
	cfg.DatabaseDSN = pick(file.DatabaseDSN, dsnFlag, "d")
	cfg.LogLevel = pick(file.LogLevel, logLevelFlag, "l")
	cfg.Scheme = pick(file.Scheme, schemeFlag, "scheme")
	timeout := pick(file.Timeout, timeoutFlag, "t")
	retryDelay := pick(file.RetryDelay, retryDelayFlag, "retry-delay")

	// Переменные окружения имеют наивысший приоритет
	if env := getenv("OUTPUT_MODE"); env != "" {
		cfg.OutputMode = env
	}
	if env := getenv("STATE_DIR"); env != "" {
		cfg.StateDir = env
	}
	if env := getenv("DATABASE_DSN"); env != "" {
		cfg.DatabaseDSN = env
	}
	if env := getenv("LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
	if env := getenv("PROBE_SCHEME"); env != "" {
		cfg.Scheme = env
	}
	if env := getenv("PROBE_TIMEOUT"); env != "" {
		timeout = env
	}
	if env := getenv("RETRY_DELAY"); env != "" {
		retryDelay = env
	}

	if cfg.Timeout, err = ParseDuration(timeout); err != nil {
		return nil, errs.InvalidParameters(fmt.Errorf("invalid timeout %q: %w", timeout, err))
	}
	if cfg.RetryDelay, err = ParseDuration(retryDelay); err != nil {
		return nil, errs.InvalidParameters(fmt.Errorf("invalid retry delay %q: %w", retryDelay, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errs.InvalidParameters(err)
	}
	return cfg, nil
}

// Validate проверяет значения, не зависящие от позиционных аргументов
func (c *ProbeConfig) Validate() error {
	switch c.OutputMode {
	case "pipe", "legacy":
	default:
		return fmt.Errorf("invalid output mode %q", c.OutputMode)
	}
	switch c.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid scheme %q", c.Scheme)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if c.DatabaseDSN == "" && c.StateDir == "" {
		return fmt.Errorf("state directory is required")
	}
	return nil
}
