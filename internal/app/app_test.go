package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/25x8/nginx-probe/internal/config"
	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/models"
	"github.com/25x8/nginx-probe/internal/senders"
	"github.com/25x8/nginx-probe/internal/stubstatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

var initial = stubstatus.Status{
	Active: 291, Accepts: 1000, Handled: 1000, Requests: 2000,
	Reading: 6, Writing: 179, Waiting: 106,
}

// clock возвращает заданные моменты по очереди
func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		ts := times[i]
		if i < len(times)-1 {
			i++
		}
		return ts
	}
}

func startServer(t *testing.T, opts stubstatus.Options) (*stubstatus.Server, *config.ProbeConfig) {
	t.Helper()

	s := stubstatus.NewServer(opts)
	router, err := s.Router()
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	reg := models.NginxRegistry()
	cfg := &config.ProbeConfig{
		Target: config.Target{
			Mask: models.AllEnabled(reg),
			Host: u.Hostname(),
			Port: u.Port(),
			Path: stubstatus.DefaultPath,
		},
		OutputMode: senders.ModePipe,
		StateDir:   filepath.Join(t.TempDir(), "tmp"),
		Timeout:    time.Second,
		Scheme:     "http",
	}
	return s, cfg
}

func newApp(t *testing.T, cfg *config.ProbeConfig, stdout *bytes.Buffer, now func() time.Time) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, Options{Stdout: stdout, Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	return a
}

func TestApp_BootstrapThenEmit(t *testing.T) {
	s, cfg := startServer(t, stubstatus.Options{Initial: initial})
	var stdout bytes.Buffer
	a := newApp(t, cfg, &stdout, clock(t0, t0.Add(60*time.Second)))

	// Первый запуск: только снимок
	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, stdout.String())
	assert.FileExists(t, filepath.Join(cfg.StateDir, "nginx_"+cfg.Host+"_"+cfg.Port+".dat"))

	next := initial
	next.Active = 300
	next.Accepts += 60
	next.Handled += 120
	next.Requests += 600
	s.Set(next)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, strings.Join([]string{
		"27:Active Connections:4|300|",
		"110:Accepted Connections/Sec:4|1.00|",
		"63:Handled Connections/Sec:4|2.00|",
		"172:Requests/Sec:4|10.00|",
		"151:Reading:4|6|",
		"81:Writing:4|179|",
		"58:Waiting:4|106|",
	}, "\n")+"\n", stdout.String())
}

func TestApp_CounterReset(t *testing.T) {
	s, cfg := startServer(t, stubstatus.Options{Initial: initial})
	cfg.Mask = models.Mask{false, false, false, true}
	var stdout bytes.Buffer
	a := newApp(t, cfg, &stdout, clock(t0, t0.Add(30*time.Second)))

	require.NoError(t, a.Run(context.Background()))

	// nginx перезапущен
	s.Set(stubstatus.Status{Requests: 10})
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "172:Requests/Sec:4|10.00|\n", stdout.String())
}

func TestApp_RetryAfterBootstrap(t *testing.T) {
	_, cfg := startServer(t, stubstatus.Options{Initial: initial, AutoIncrement: true})
	cfg.RetryDelay = 10 * time.Millisecond
	var stdout bytes.Buffer
	a := newApp(t, cfg, &stdout, clock(t0, t0.Add(time.Second)))

	require.NoError(t, a.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 7)
	// Каждый запрос увеличивает счетчики на 1, между запусками 1 секунда
	assert.Equal(t, "110:Accepted Connections/Sec:4|1.00|", lines[1])
	assert.Equal(t, "172:Requests/Sec:4|1.00|", lines[3])
}

func TestApp_RetryCancelled(t *testing.T) {
	_, cfg := startServer(t, stubstatus.Options{Initial: initial})
	cfg.RetryDelay = time.Hour
	var stdout bytes.Buffer
	a := newApp(t, cfg, &stdout, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, a.Run(ctx))
	assert.Empty(t, stdout.String())
}

func TestApp_LegacyOutput(t *testing.T) {
	_, cfg := startServer(t, stubstatus.Options{Initial: initial})
	cfg.OutputMode = senders.ModeLegacy
	cfg.Mask = models.Mask{true}
	var stdout bytes.Buffer
	a := newApp(t, cfg, &stdout, clock(t0, t0.Add(time.Minute)))

	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, a.Run(context.Background()))

	var record senders.LegacyRecord
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &record))
	assert.Equal(t, senders.LegacyRecord{
		VariableName: "Active Connections",
		MetricUUID:   "27",
		Timestamp:    "2026-10-14T12:01:00.000Z",
		Value:        "291",
	}, record)
}

func TestApp_Errors(t *testing.T) {
	t.Run("Invalid authentication", func(t *testing.T) {
		_, cfg := startServer(t, stubstatus.Options{Username: "admin", Password: "secret"})
		cfg.Username = "admin"
		cfg.Password = "wrong"

		err := newApp(t, cfg, &bytes.Buffer{}, nil).Run(context.Background())
		assert.Equal(t, 2, errs.ExitCode(err))
	})

	t.Run("Corrupt snapshot", func(t *testing.T) {
		_, cfg := startServer(t, stubstatus.Options{Initial: initial})
		require.NoError(t, os.MkdirAll(cfg.StateDir, 0755))
		path := filepath.Join(cfg.StateDir, models.TargetKey{Host: cfg.Host, Port: cfg.Port}.FileName())
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

		err := newApp(t, cfg, &bytes.Buffer{}, nil).Run(context.Background())
		assert.Equal(t, 23, errs.ExitCode(err))

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "not json", string(data))
	})

	t.Run("Cannot create state directory", func(t *testing.T) {
		_, cfg := startServer(t, stubstatus.Options{Initial: initial})
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))
		cfg.StateDir = filepath.Join(blocker, "tmp")

		err := newApp(t, cfg, &bytes.Buffer{}, nil).Run(context.Background())
		assert.Equal(t, 21, errs.ExitCode(err))
	})

	t.Run("Metric not found", func(t *testing.T) {
		_, cfg := startServer(t, stubstatus.Options{Path: "/other", Initial: initial})
		cfg.Path = "/other"
		reg := models.MustNewRegistry(models.MetricDefinition{Name: "dropped", ID: "1:Dropped:4", Label: "Dropped", Kind: models.Counter})
		cfg.Mask = models.AllEnabled(reg)

		a, err := New(context.Background(), cfg, Options{Stdout: &bytes.Buffer{}, Registry: reg})
		require.NoError(t, err)
		defer a.Close()

		err = a.Run(context.Background())
		assert.Equal(t, 8, errs.ExitCode(err))
		assert.Equal(t, "Unable to collect metric 1:Dropped:4", errs.Message(err))
	})
}

func TestNew_InvalidOutputMode(t *testing.T) {
	_, cfg := startServer(t, stubstatus.Options{})
	cfg.OutputMode = "xml"

	_, err := New(context.Background(), cfg, Options{Stdout: &bytes.Buffer{}})
	assert.Error(t, err)
}
