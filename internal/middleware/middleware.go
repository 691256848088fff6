// Package middleware содержит обёртки http.RoundTripper для клиента GeoServer:
// аутентификацию, общие заголовки и логирование запросов.
package middleware

import "net/http"

// Middleware оборачивает транспорт дополнительной логикой
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc позволяет использовать функцию как http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip вызывает f(r)
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain применяет middleware к base так, что первый в списке выполняется первым
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// cloneRequest копирует запрос перед изменением заголовков,
// RoundTripper не должен модифицировать исходный запрос.
func cloneRequest(r *http.Request) *http.Request {
	return r.Clone(r.Context())
}
