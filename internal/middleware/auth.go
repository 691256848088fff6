package middleware

import "net/http"

// WithBasicAuth добавляет заголовок Authorization: Basic base64(user:pass) к каждому запросу
func WithBasicAuth(username, password string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			req := cloneRequest(r)
			req.SetBasicAuth(username, password)
			return next.RoundTrip(req)
		})
	}
}

// WithHeaders устанавливает заголовки, если запрос не задал их сам
func WithHeaders(headers map[string]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			req := cloneRequest(r)
			for k, v := range headers {
				if req.Header.Get(k) == "" {
					req.Header.Set(k, v)
				}
			}
			return next.RoundTrip(req)
		})
	}
}
