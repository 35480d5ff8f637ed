package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/source"
)

// bookingService serves five bookings in pages of page_size.
func bookingService(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	bookings := []booking.Record{
		{"id": "A", "support_id": "S1", "start_date": "2024-01-01", "end_date": "2024-03-31"},
		{"id": "B", "support_id": "S1", "start_date": "2024-02-01", "end_date": "2024-04-30"},
		{"id": "C", "support_id": "S1", "start_date": "2024-05-01", "end_date": "2024-06-30"},
		{"id": "D", "support_id": "S2", "start_date": "2024-07-01", "end_date": "2024-07-31"},
		{"id": "E", "support_id": "S2", "start_date": "2024-09-01", "end_date": "2024-12-31"},
	}
	supports := []booking.Record{
		{"id": "S1", "code": "P-01", "city": "Lyon"},
		{"id": "S2", "code": "P-02", "city": "Paris"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("year") != "2024" {
			json.NewEncoder(w).Encode(envelope{})
			return
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("page"))
		end := offset + size
		if end > len(bookings) {
			end = len(bookings)
		}
		env := envelope{Data: bookings[offset:end]}
		if end < len(bookings) {
			env.Next = strconv.Itoa(end)
		}
		json.NewEncoder(w).Encode(env)
	})
	mux.HandleFunc("/v1/supports", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			json.NewEncoder(w).Encode(envelope{Data: supports[:1], Next: "1"})
			return
		}
		json.NewEncoder(w).Encode(envelope{Data: supports[1:]})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://bookings.example.com", false},
		{"http://localhost:9000/v1/", false},
		{"", true},
		{"mongodb://localhost:27017", true},
		{"bookings.example.com", true},
	}
	for _, tt := range tests {
		_, err := New(Options{BaseURL: tt.url})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestCollect(t *testing.T) {
	srv := bookingService(t, nil)
	src, err := New(Options{BaseURL: srv.URL + "/v1/", Token: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	records, err := source.Collect(context.Background(), src, source.Query{Year: 2024, PageSize: 2})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if records[4]["id"] != "E" {
		t.Errorf("last record = %v, want E", records[4]["id"])
	}
}

func TestFetchSupportsDrainsPages(t *testing.T) {
	srv := bookingService(t, nil)
	src, _ := New(Options{BaseURL: srv.URL + "/v1"})

	dir, issues, err := source.Directory(context.Background(), src)
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v", issues)
	}
	if got := dir["S2"].City; got != "Paris" {
		t.Errorf("S2 city = %q, want Paris", got)
	}
}

func TestUnauthorized(t *testing.T) {
	srv := bookingService(t, nil)
	src, _ := New(Options{BaseURL: srv.URL + "/v1"})

	_, err := src.FetchBookings(context.Background(), source.Query{Year: 2024}, "")
	if !errors.Is(err, errors.ErrCodeSourceUnavailable) {
		t.Errorf("err = %v, want SOURCE_UNAVAILABLE", err)
	}
	if cache.IsRetryable(err) {
		t.Error("401 should not be retryable")
	}
}

func TestName(t *testing.T) {
	src, _ := New(Options{BaseURL: "https://bookings.example.com/api"})
	if got := src.Name(); got != "api:bookings.example.com" {
		t.Errorf("Name() = %q", got)
	}
}

func TestCachedPages(t *testing.T) {
	var hits int32
	srv := bookingService(t, &hits)
	src, _ := New(Options{BaseURL: srv.URL + "/v1", Token: "secret"})

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cached := source.NewCached(src, c, nil)
	q := source.Query{Year: 2024, PageSize: 5}

	for i := 0; i < 2; i++ {
		if _, err := source.Collect(context.Background(), cached, q); err != nil {
			t.Fatalf("Collect #%d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("service hit %d times, want 1", n)
	}
}
