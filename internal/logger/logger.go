// Package logger хранит общий zap-логер пробы и HTTP-обертки для логирования запросов.
//
// stdout принадлежит агенту сбора, поэтому журнал всегда пишется в stderr.
package logger

import (
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log - общий логер. Меняется только через Initialize; до него ничего не пишет.
var Log *zap.Logger = zap.NewNop()

// Initialize настраивает Log на уровень level с выводом в stderr
func Initialize(level string) error {
	zl, err := New(level, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	Log = zl
	return nil
}

// New собирает JSON-логер с заданным уровнем поверх sink
func New(level string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.CallerKey = zapcore.OmitKey
	encoderConfig.StacktraceKey = zapcore.OmitKey
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, lvl)
	return zap.New(core), nil
}

// Sync сбрасывает буферы логера
func Sync() {
	_ = Log.Sync()
}

// RequestLogger логирует запросы к странице состояния: путь, метод, код, размер ответа.
// Ответы 5xx пишутся с уровнем warn.
func RequestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		h.ServeHTTP(rec, r)

		level := zapcore.InfoLevel
		if rec.Status() >= http.StatusInternalServerError {
			level = zapcore.WarnLevel
		}
		Log.Log(level, "Request",
			zap.String("uri", r.RequestURI),
			zap.String("method", r.Method),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
			zap.Int("status", rec.Status()),
			zap.Int("size", rec.size),
		)
	})
}

// statusRecorder запоминает код и размер ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

// Status возвращает код ответа; без явного WriteHeader это 200
func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	n, err := r.ResponseWriter.Write(data)
	r.size += n
	return n, err
}

// Transport оборачивает http.RoundTripper логированием исходящих запросов.
// Если rt == nil, используется http.DefaultTransport.
func Transport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &loggingTransport{next: rt}
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		Log.Debug("Outbound request failed",
			zap.String("uri", r.URL.Redacted()),
			zap.String("method", r.Method),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	Log.Debug("Outbound request",
		zap.String("uri", r.URL.Redacted()),
		zap.String("method", r.Method),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}
