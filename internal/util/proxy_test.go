package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	tests := []struct {
		name       string
		httpProxy  string
		httpsProxy string
		noProxy    string
		target     string
		want       string
	}{
		{"http uses http proxy", "http://proxy:8080", "", "", "http://en.wikipedia.org/w/api.php", "http://proxy:8080"},
		{"https falls back to http proxy", "http://proxy:8080", "", "", "https://en.wikipedia.org/w/api.php", "http://proxy:8080"},
		{"https proxy preferred", "http://proxy:8080", "http://secure:8443", "", "https://en.wikipedia.org/w/api.php", "http://secure:8443"},
		{"no_proxy bypasses", "http://proxy:8080", "", "wikipedia.org", "https://en.wikipedia.org/w/api.php", ""},
		{"loopback bypasses", "http://proxy:8080", "", "", "http://127.0.0.1:9000/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := NewProxyFunc(tt.httpProxy, tt.httpsProxy, tt.noProxy)
			req, err := http.NewRequest(http.MethodGet, tt.target, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}

			got, err := fn(req)
			if err != nil {
				t.Fatalf("proxy func: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected direct connection, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("expected proxy %s, got %v", tt.want, got)
			}
		})
	}
}
