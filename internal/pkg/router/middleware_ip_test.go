package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddlewareIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, remote: "10.0.0.2:443", want: "203.0.113.7"},
		{name: "true client ip wins", headers: map[string]string{"True-Client-IP": "198.51.100.1", "X-Real-IP": "198.51.100.2"}, remote: "10.0.0.2:443", want: "198.51.100.1"},
		{name: "garbage header falls through", headers: map[string]string{"X-Real-IP": "not-an-ip", "X-Forwarded-For": "2001:db8::1"}, remote: "10.0.0.2:443", want: "2001:db8::1"},
		{name: "socket address", remote: "192.0.2.10:51234", want: "192.0.2.10"},
		{name: "unparseable kept", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var got string
			h := middlewareIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = r.RemoteAddr }))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			// Act
			h.ServeHTTP(httptest.NewRecorder(), req)

			// Assert
			assert.Equal(t, tt.want, got)
		})
	}
}
