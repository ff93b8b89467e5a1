package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.Resyncs == nil || r.Writes == nil || r.SlotsUsed == nil || r.BytesRemaining == nil {
		t.Error("engine metrics not initialized")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler(t *testing.T) {
	body := scrape(t, Global())
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if Handler() == nil {
		t.Error("Handler() returned nil")
	}
}

func TestStorageMetrics(t *testing.T) {
	r := NewRegistry()

	r.IncResync("session")
	r.IncResync("session")
	r.RecordWrite("session", ResultOK)
	r.RecordWrite("session", ResultRejected)
	r.SetSlotsUsed("session", 3)
	r.SetBytesRemaining("session", 120)

	body := scrape(t, r)
	for _, want := range []string{
		`slotkv_storage_resyncs_total{location="session"} 2`,
		`slotkv_storage_writes_total{location="session",result="ok"} 1`,
		`slotkv_storage_writes_total{location="session",result="rejected"} 1`,
		`slotkv_storage_slots_used{location="session"} 3`,
		`slotkv_storage_bytes_remaining{location="session"} 120`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.IncResync("session")
	r.RecordWrite("session", ResultOK)
	r.SetSlotsUsed("session", 1)
	r.SetBytesRemaining("session", 1)
}

func TestGather(t *testing.T) {
	r := NewRegistry()
	r.SetSlotsUsed("persistent", 2)

	families, err := r.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "slotkv_storage_slots_used" {
			found = true
		}
	}
	if !found {
		t.Error("slotkv_storage_slots_used not gathered")
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.IncResync("session")
				r.RecordWrite("session", ResultOK)
				r.SetSlotsUsed("session", j)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if !strings.Contains(scrape(t, r), `slotkv_storage_resyncs_total{location="session"} 1000`) {
		t.Error("expected 1000 resyncs")
	}
}
