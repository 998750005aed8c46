package collectors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/25x8/nginx-probe/internal/buildinfo"
	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/models"
	"go.uber.org/zap"
)

// DefaultTimeout - таймаут запроса к stub_status по умолчанию
const DefaultTimeout = 10 * time.Second

// Options - параметры запроса к stub_status
type Options struct {
	Scheme    string
	Host      string
	Port      string
	Path      string
	Username  string
	Password  string
	Timeout   time.Duration
	Transport http.RoundTripper
	UserAgent string
	Now       func() time.Time
}

// StubStatusCollector - структура для сбора метрик nginx stub_status
type StubStatusCollector struct {
	opts   Options
	url    string
	client *http.Client
}

// NewStubStatusCollector - конструктор для StubStatusCollector
func NewStubStatusCollector(opts Options) *StubStatusCollector {
	if opts.Scheme == "" {
		opts.Scheme = "http"
	}
	if opts.Port == "" {
		opts.Port = "80"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &StubStatusCollector{
		opts: opts,
		url:  buildURL(opts),
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: logger.Transport(opts.Transport),
		},
	}
}

// URL возвращает адрес stub_status
func (c *StubStatusCollector) URL() string {
	return c.url
}

// Target возвращает ключ снимка для опрашиваемого сервера
func (c *StubStatusCollector) Target() models.TargetKey {
	return models.TargetKey{Host: c.opts.Host, Port: c.opts.Port}
}

// Fetch выполняет GET и разбирает ответ.
// Возвращает также время начала запроса, оно становится меткой наблюдений.
func (c *StubStatusCollector) Fetch(ctx context.Context) (Readings, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if c.opts.Username != "" {
		req.SetBasicAuth(c.opts.Username, c.opts.Password)
	}

	start := c.opts.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, time.Time{}, classify(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, time.Time{}, errs.InvalidAuthentication()
	case resp.StatusCode != http.StatusOK:
		return nil, time.Time{}, errs.HTTPStatus(resp.StatusCode)
	}

	readings, err := ParseStubStatus(resp.Body)
	if err != nil {
		return nil, time.Time{}, err
	}

	logger.Log.Debug("stub_status fetched",
		zap.String("url", c.url),
		zap.Int("fields", len(readings)),
	)
	return readings, start, nil
}

// Collect опрашивает сервер и строит текущий снимок для включенных метрик
func (c *StubStatusCollector) Collect(ctx context.Context, reg *models.Registry, mask models.Mask) (models.Snapshot, error) {
	readings, ts, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(reg, mask, readings, ts)
}

// BuildSnapshot строит снимок в порядке реестра.
// Включенная метрика, которой нет в ответе, - отказ MetricNotFound.
func BuildSnapshot(reg *models.Registry, mask models.Mask, readings Readings, ts time.Time) (models.Snapshot, error) {
	var snapshot models.Snapshot
	for i, def := range reg.Definitions() {
		if !mask.Enabled(i) {
			continue
		}
		value, ok := readings[def.Name]
		if !ok {
			return nil, errs.MetricNotFound(def.ID)
		}
		snapshot = append(snapshot, models.NewObservation(def.ID, ts, value))
	}
	return snapshot, nil
}

func buildURL(opts Options) string {
	path, query, _ := strings.Cut(opts.Path, "?")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := url.URL{
		Scheme:   opts.Scheme,
		Host:     net.JoinHostPort(opts.Host, opts.Port),
		Path:     path,
		RawQuery: query,
	}
	return u.String()
}

// classify переводит ошибку транспорта в отказ пробы
func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return errs.UnknownHost(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return errs.UnknownHost(err)
	}
	return fmt.Errorf("stub_status request failed: %w", err)
}
