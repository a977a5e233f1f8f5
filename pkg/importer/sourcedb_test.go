package importer

import (
	"context"
	"path/filepath"
	"testing"
)

// fakeAdapter is a no-op Adapter for seeding tests.
type fakeAdapter struct {
	id, dataset, desc, url, license string
}

func (f *fakeAdapter) ID() string          { return f.id }
func (f *fakeAdapter) Dataset() string     { return f.dataset }
func (f *fakeAdapter) Description() string { return f.desc }
func (f *fakeAdapter) DefaultURL() string  { return f.url }
func (f *fakeAdapter) License() string     { return f.license }

func (f *fakeAdapter) Import(context.Context, string, string) error { return nil }

func openTestDB(t *testing.T) *SourceDB {
	t.Helper()
	sdb, err := OpenSourceDB(filepath.Join(t.TempDir(), "sources.db"))
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return sdb
}

func seedOne(t *testing.T, sdb *SourceDB, id, url string) {
	t.Helper()
	err := sdb.Seed([]Adapter{&fakeAdapter{id, "compounds.csv", "test source", url, "CC0"}})
	if err != nil {
		t.Fatalf("Seed(%s): %v", id, err)
	}
}

func TestOpenSourceDB_EmptySchema(t *testing.T) {
	sdb := openTestDB(t)

	sources, err := sdb.List()
	if err != nil {
		t.Fatalf("List on fresh db: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("fresh db has %d sources, want 0", len(sources))
	}
}

func TestSeed_DoesNotOverwrite(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "compounds-csv", "https://data.example.com/v1.csv")

	// Re-seeding with a different default must not clobber the row.
	seedOne(t, sdb, "compounds-csv", "https://data.example.com/v2.csv")

	url, err := sdb.URL("compounds-csv")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if url != "https://data.example.com/v1.csv" {
		t.Fatalf("URL = %s, want the original v1 url", url)
	}
}

func TestSetURL(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "compounds-csv", "https://data.example.com/old.csv")

	if err := sdb.SetURL("compounds-csv", "https://mirror.example.com/new.csv"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	url, err := sdb.URL("compounds-csv")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if url != "https://mirror.example.com/new.csv" {
		t.Fatalf("URL = %s, want the override", url)
	}

	if err := sdb.SetURL("no-such-adapter", "https://x.example.com"); err == nil {
		t.Fatal("SetURL on unknown adapter should fail")
	}
}

func TestRecordCheck(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "compounds-csv", "https://data.example.com/c.csv")

	if err := sdb.RecordCheck("compounds-csv", 200, ""); err != nil {
		t.Fatalf("RecordCheck: %v", err)
	}
	sources, err := sdb.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	src := sources[0]
	if src.LastStatus == nil || *src.LastStatus != 200 {
		t.Fatalf("LastStatus = %v, want 200", src.LastStatus)
	}
	if src.LastCheck == nil || *src.LastCheck == 0 {
		t.Fatal("LastCheck not set")
	}
	if src.LastError != nil {
		t.Fatalf("LastError = %q, want nil", *src.LastError)
	}

	// A failed check replaces the stored result.
	if err := sdb.RecordCheck("compounds-csv", 404, "not found"); err != nil {
		t.Fatalf("RecordCheck failure: %v", err)
	}
	sources, _ = sdb.List()
	src = sources[0]
	if src.LastStatus == nil || *src.LastStatus != 404 {
		t.Fatalf("LastStatus = %v, want 404", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError != "not found" {
		t.Fatalf("LastError = %v, want \"not found\"", src.LastError)
	}
}

func TestList_OrderedByAdapterID(t *testing.T) {
	sdb := openTestDB(t)
	seedOne(t, sdb, "z-sources", "https://data.example.com/z.csv")
	seedOne(t, sdb, "a-compounds", "https://data.example.com/a.csv")

	sources, err := sdb.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("List returned %d sources, want 2", len(sources))
	}
	if sources[0].AdapterID != "a-compounds" {
		t.Fatalf("first source = %s, want a-compounds", sources[0].AdapterID)
	}
}
