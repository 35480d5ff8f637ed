package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/observability"
	"github.com/matzehuels/occupancy/pkg/source"
)

func testSource() *source.Static {
	bookings := []booking.Record{
		{"id": "A", "support_id": "S1", "start_date": "2024-01-01", "end_date": "2024-03-31", "client": "Acme", "vendor": "North", "total": "100.50", "status": "confirmed"},
		{"id": "B", "support_id": "S1", "start_date": "2024-02-01", "end_date": "2024-04-30", "client": "Bolt", "vendor": "South", "total": 200, "status": "option"},
		{"id": "C", "support_id": "S1", "start_date": "2024-05-01", "end_date": "2024-05-31", "client": "Acme", "vendor": "North", "total": 50, "status": "confirmed"},
		{"id": "D", "support_id": "S2", "start_date": "2023-11-01", "end_date": "2024-02-01", "client": "Acme", "vendor": "South"},
		{"id": "E", "support_id": "S3", "start_date": "2022-01-01", "end_date": "2022-12-31"},
		{"id": "F", "support_id": "S2", "start_date": "2024-13-01", "end_date": "2024-12-31"},
		{"id": "G", "support_id": "S9", "start_date": "2024-06-01", "end_date": "2024-06-30"},
	}
	supports := []booking.Record{
		{"id": "S1", "code": "LY-01", "city": "Lyon"},
		{"id": "S2", "code": "PA-02", "city": "Paris"},
		{"id": "S3", "code": "PA-03", "city": "Paris"},
	}
	return source.NewStatic("test", bookings, supports)
}

func TestExecute(t *testing.T) {
	r := NewRunner(testSource(), nil, nil)
	res, err := r.Execute(context.Background(), Options{Year: 2024, Formats: []string{"json", "svg", "ics", "txt", "dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Records != 7 || res.Stats.Skipped != 1 {
		t.Errorf("records/skipped = %d/%d, want 7/1", res.Stats.Records, res.Stats.Skipped)
	}
	// E is outside 2024, F is malformed.
	if res.Stats.Bookings != 5 || res.Stats.Supports != 3 {
		t.Errorf("bookings/supports = %d/%d, want 5/3", res.Stats.Bookings, res.Stats.Supports)
	}
	if res.Summary.Peak != 2 {
		t.Errorf("peak = %d, want 2", res.Summary.Peak)
	}
	for _, f := range []string{"json", "svg", "ics", "txt", "dot"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s missing", f)
		}
	}

	doc, err := layout.Unmarshal(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(doc.Skipped) != 1 || doc.Skipped[0].ID != "F" {
		t.Errorf("skipped = %+v", doc.Skipped)
	}
	supports := doc.Supports()
	if supports[0].ID != "S1" || supports[0].Rows != 2 {
		t.Errorf("first support = %+v", supports[0])
	}
	// Unknown supports keep their id with empty metadata.
	if last := supports[len(supports)-1]; last.ID != "S9" || last.City != "" {
		t.Errorf("placeholder support = %+v", last)
	}
}

func TestExecuteReportsStages(t *testing.T) {
	var stages []Stage
	opts := Options{Year: 2024, OnStage: func(st Stage) { stages = append(stages, st) }}
	if _, err := NewRunner(testSource(), nil, nil).Execute(context.Background(), opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []Stage{StageLoad, StageLayout, StageRender}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestExecuteGroupedAndFiltered(t *testing.T) {
	r := NewRunner(testSource(), nil, nil)
	res, err := r.Execute(context.Background(), Options{Year: 2024, GroupBy: "city", Filter: Filter{Vendor: "north"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	doc := res.Document
	if doc.GroupBy != "city" {
		t.Errorf("GroupBy = %q", doc.GroupBy)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Key != "Lyon" {
		t.Fatalf("sections = %+v", doc.Sections)
	}
	s := doc.Sections[0].Supports[0]
	if len(s.Bookings) != 2 || s.Rows != 1 {
		t.Errorf("filtered support = %+v", s)
	}
	if doc.Sections[0].Total != "150.5" {
		t.Errorf("section total = %s", doc.Sections[0].Total)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(testSource(), nil, nil)
	if _, err := r.Execute(context.Background(), Options{Year: 2024, Formats: []string{"pdf"}}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestExecuteIdempotent(t *testing.T) {
	r := NewRunner(testSource(), nil, nil)
	opts := Options{Year: 2024, Formats: []string{"json", "svg", "txt"}}
	a, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for f := range a.Artifacts {
		if !bytes.Equal(a.Artifacts[f], b.Artifacts[f]) {
			t.Errorf("%s differs between runs", f)
		}
	}
}

func TestRunnerUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := &countingSource{Source: testSource()}
	r := NewRunner(src, c, nil)
	opts := Options{Year: 2024, PageSize: 3}

	if _, err := r.Load(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	first := src.calls
	if first != 3 {
		t.Fatalf("pages fetched = %d, want 3", first)
	}
	if _, err := r.Load(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if src.calls != first {
		t.Errorf("second load fetched %d more pages", src.calls-first)
	}

	opts.Refresh = true
	if _, err := r.Load(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2*first {
		t.Errorf("refresh should refetch every page, calls = %d", src.calls)
	}
}

func TestRunnerLogsSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf)
	r := NewRunner(testSource(), nil, logger)
	if _, err := r.Load(context.Background(), Options{Year: 2024}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "skipped booking") || !strings.Contains(out, "id=F") {
		t.Errorf("log output = %q", out)
	}
}

func TestRunnerHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	r := NewRunner(testSource(), nil, nil)
	if _, err := r.Execute(context.Background(), Options{Year: 2024}); err != nil {
		t.Fatal(err)
	}
	want := []string{"load:start", "load:complete", "layout:start", "layout:complete", "render:start", "render:complete"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if rec.records != 7 || rec.supports != 3 {
		t.Errorf("records/supports = %d/%d", rec.records, rec.supports)
	}
}

func TestMergeSupports(t *testing.T) {
	doc := layout.Document{Year: 2024, GroupBy: "vendor", Sections: []layout.Section{
		{Key: "North", Supports: []layout.Support{{ID: "S1", Rows: 2, Bookings: []layout.Booking{{ID: "A"}}}}},
		{Key: "South", Supports: []layout.Support{{ID: "S2", Rows: 1}, {ID: "S1", Rows: 2, Bookings: []layout.Booking{{ID: "B", Row: 1}}}}},
	}}
	got := MergeSupports(doc)
	if len(got) != 2 || got[0].ID != "S1" || got[1].ID != "S2" {
		t.Fatalf("MergeSupports = %+v", got)
	}
	if len(got[0].Bookings) != 2 {
		t.Errorf("S1 bookings = %+v", got[0].Bookings)
	}
	if len(doc.Sections[0].Supports[0].Bookings) != 1 {
		t.Error("MergeSupports modified the document")
	}
}

type countingSource struct {
	source.Source
	mu    sync.Mutex
	calls int
}

func (s *countingSource) FetchBookings(ctx context.Context, q source.Query, token string) (source.Page, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Source.FetchBookings(ctx, q, token)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events   []string
	records  int
	supports int
}

func (h *recordingHooks) OnLoadStart(context.Context, string, int) {
	h.events = append(h.events, "load:start")
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, records int, _ time.Duration, _ error) {
	h.events = append(h.events, "load:complete")
	h.records = records
}

func (h *recordingHooks) OnLayoutStart(context.Context, int, int) {
	h.events = append(h.events, "layout:start")
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ int, supports int, _ time.Duration, _ error) {
	h.events = append(h.events, "layout:complete")
	h.supports = supports
}

func (h *recordingHooks) OnRenderStart(context.Context, []string) {
	h.events = append(h.events, "render:start")
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.events = append(h.events, "render:complete")
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}
