package stubstatus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/middleware"
	"github.com/gorilla/mux"
)

// DefaultPath - путь stub_status по умолчанию
const DefaultPath = "/nginx_status"

// Options - настройки эмулятора
type Options struct {
	Path          string
	Username      string
	Password      string
	AllowSubnets  []string
	AutoIncrement bool // каждый запрос увеличивает accepts, handled и requests
	Initial       Status
}

// Server отдает Status по HTTP
type Server struct {
	mu      sync.Mutex
	status  Status
	failure int
	opts    Options
}

// NewServer - конструктор для Server
func NewServer(opts Options) *Server {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	return &Server{
		status: opts.Initial,
		opts:   opts,
	}
}

// Set заменяет отдаваемые значения
func (s *Server) Set(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status возвращает текущие значения
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// FailWith заставляет эмулятор отвечать кодом code, 0 возвращает обычную работу
func (s *Server) FailWith(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = code
}

// Router собирает маршруты эмулятора
func (s *Server) Router() (*mux.Router, error) {
	allow, err := middleware.AllowSubnets(s.opts.AllowSubnets...)
	if err != nil {
		return nil, err
	}

	// Функция для обертки обработчиков
	wrapHandler := func(handler http.Handler) http.Handler {
		return logger.RequestLogger(
			allow(
				middleware.BasicAuth("nginx", s.opts.Username, s.opts.Password)(
					middleware.Gzip(handler),
				),
			),
		)
	}

	r := mux.NewRouter()
	r.Handle(s.opts.Path, wrapHandler(http.HandlerFunc(s.HandleStatus))).Methods(http.MethodGet, http.MethodHead)
	r.NotFoundHandler = logger.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 Not Found", http.StatusNotFound)
	}))

	return r, nil
}

// HandleStatus - обработчик stub_status
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.failure != 0 {
		code := s.failure
		s.mu.Unlock()
		http.Error(w, fmt.Sprintf("%d %s", code, http.StatusText(code)), code)
		return
	}
	if s.opts.AutoIncrement {
		s.status.Accepts++
		s.status.Handled++
		s.status.Requests++
	}
	body := s.status.Render()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	fmt.Fprint(w, body)
}
