package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("image-bytes"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		path    string
		opts    FetchOptions
		want    string
		wantErr error
		anyErr  bool
	}{
		{name: "ok", path: "/ok", want: "image-bytes"},
		{name: "not found", path: "/missing", anyErr: true},
		{name: "too large", path: "/big", opts: FetchOptions{MaxBytes: 16}, wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Fetch(context.Background(), srv.URL+tt.path, tt.opts)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Fatal("Fetch() expected error")
				}
			default:
				if err != nil {
					t.Fatalf("Fetch() error = %v", err)
				}
				if string(data) != tt.want {
					t.Errorf("Fetch() = %q, want %q", data, tt.want)
				}
			}
		})
	}

	if !strings.HasPrefix(gotUA, "colorvibe/") {
		t.Errorf("User-Agent = %q, want colorvibe/ prefix", gotUA)
	}
}
