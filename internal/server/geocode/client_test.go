package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/runjourney/api/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, nil, logging.Setup("error", "text"))
}

func TestLookup_ParsesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("city"); got != "Salvador" {
			t.Errorf("unexpected city param %q", got)
		}
		if got := r.URL.Query().Get("country"); got != "Brazil" {
			t.Errorf("unexpected country param %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Write([]byte(`[{"lat":"-12.9714","lon":"-38.5014"}]`))
	})

	coords := client.Lookup(context.Background(), "Salvador", "Bahia")
	if coords.Latitude != -12.9714 || coords.Longitude != -38.5014 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
}

func TestLookup_EmptyResultFallsBack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	coords := client.Lookup(context.Background(), "Atlantis", "Bahia")
	if coords.Latitude != DefaultLatitude || coords.Longitude != DefaultLongitude {
		t.Fatalf("expected default coordinates, got %+v", coords)
	}
}

func TestLookup_ServerErrorFallsBack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	coords := client.Lookup(context.Background(), "Salvador", "Bahia")
	if coords.Latitude != DefaultLatitude || coords.Longitude != DefaultLongitude {
		t.Fatalf("expected default coordinates, got %+v", coords)
	}
}

func TestLookup_UnreachableServerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // deliberately dead

	client := NewClient(srv.URL, 100*time.Millisecond, nil, logging.Setup("error", "text"))

	coords := client.Lookup(context.Background(), "Salvador", "Bahia")
	if coords.Latitude != DefaultLatitude || coords.Longitude != DefaultLongitude {
		t.Fatalf("expected default coordinates, got %+v", coords)
	}
}
