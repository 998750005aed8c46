package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// AllowSubnets пропускает только клиентов из перечисленных подсетей,
// аналог "allow <cidr>; deny all;" в nginx. Пустой список отключает проверку.
func AllowSubnets(subnets ...string) (func(http.Handler) http.Handler, error) {
	var allowed []*net.IPNet
	for _, s := range subnets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid subnet %q: %w", s, err)
		}
		allowed = append(allowed, ipNet)
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := net.ParseIP(getClientIP(r))
			if ip == nil {
				http.Error(w, "400 Bad Request", http.StatusBadRequest)
				return
			}

			for _, n := range allowed {
				if n.Contains(ip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "403 Forbidden", http.StatusForbidden)
		})
	}, nil
}

// getClientIP извлекает IP-адрес клиента, X-Real-IP имеет приоритет
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// X-Forwarded-For может содержать список IP, берем первый
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}

	return r.RemoteAddr
}
