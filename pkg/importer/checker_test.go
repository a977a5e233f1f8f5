package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func statusServer(t *testing.T, code int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code >= 300 && code < 400 {
			w.Header().Set("Location", "https://example.com/moved")
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quietChecker(sdb *SourceDB) *Checker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewChecker(sdb, logger, time.Hour)
}

func lastStatuses(t *testing.T, sdb *SourceDB) map[string]int {
	t.Helper()
	sources, err := sdb.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	out := make(map[string]int, len(sources))
	for _, src := range sources {
		if src.LastStatus != nil {
			out[src.AdapterID] = *src.LastStatus
		}
	}
	return out
}

func TestRunOnce_RecordsEachStatus(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "ok-source", statusServer(t, http.StatusOK).URL)
	seedOne(t, sdb, "gone-source", statusServer(t, http.StatusNotFound).URL)
	seedOne(t, sdb, "broken-source", statusServer(t, http.StatusInternalServerError).URL)

	quietChecker(sdb).RunOnce(context.Background())

	got := lastStatuses(t, sdb)
	want := map[string]int{"ok-source": 200, "gone-source": 404, "broken-source": 500}
	for id, status := range want {
		if got[id] != status {
			t.Errorf("%s: status = %d, want %d", id, got[id], status)
		}
	}
}

func TestRunOnce_RedirectCountsAsReachable(t *testing.T) {
	// Redirects are not followed; the 301 itself is recorded.
	sdb := openTestDB(t)
	seedOne(t, sdb, "moved-source", statusServer(t, http.StatusMovedPermanently).URL)

	quietChecker(sdb).RunOnce(context.Background())

	if got := lastStatuses(t, sdb)["moved-source"]; got != 301 {
		t.Fatalf("status = %d, want 301", got)
	}
}

func TestRunOnce_NetworkError(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "dead-source", "http://127.0.0.1:1")

	quietChecker(sdb).RunOnce(context.Background())

	sources, _ := sdb.List()
	src := sources[0]
	if src.LastStatus == nil || *src.LastStatus != 0 {
		t.Errorf("LastStatus = %v, want 0 on network error", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError == "" {
		t.Error("LastError not recorded for network error")
	}
}

func TestRunOnce_EmptyDB(t *testing.T) {
	sdb := openTestDB(t)
	quietChecker(sdb).RunOnce(context.Background())
}
