package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"interview-coach/internal/domain"
)

// fakeRows implementa pgxRows sobre filas en memoria.
type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

func TestInMemoryMemoryStoreLatestWins(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryMemoryStore()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: domain.RecordWeaknessProfile, Content: "v1", CreatedAt: base})
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: domain.RecordWeaknessProfile, Content: "v3", CreatedAt: base.Add(time.Hour)})
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: domain.RecordWeaknessProfile, Content: "v2", CreatedAt: base.Add(time.Minute)})
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: domain.RecordSessionReport, Content: "report", CreatedAt: base.Add(2 * time.Hour)})
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_beto", RecordType: domain.RecordWeaknessProfile, Content: "other", CreatedAt: base.Add(3 * time.Hour)})

	content, found, err := store.FetchLatestByTag(ctx, "user_ana", domain.RecordWeaknessProfile)
	if err != nil || !found || content != "v3" {
		t.Fatalf("expected v3, got %q found=%v err=%v", content, found, err)
	}

	entries, _ := store.ListByTag(ctx, "user_ana", domain.RecordWeaknessProfile, 0)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Content
		if _, err := uuid.Parse(e.ID); err != nil {
			t.Fatalf("expected generated uuid, got %q", e.ID)
		}
	}
	if !reflect.DeepEqual(got, []string{"v3", "v2", "v1"}) {
		t.Fatalf("expected newest first, got %v", got)
	}

	if _, found, _ := store.FetchLatestByTag(ctx, "user_carla", domain.RecordWeaknessProfile); found {
		t.Fatalf("expected nothing for unknown tag")
	}
}

func TestInMemoryMemoryStoreSameTimestampLastInsertWins(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryMemoryStore()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range []string{"a", "b", "c"} {
		_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: domain.RecordCategoryRecord, Content: c, CreatedAt: at})
	}

	entries, _ := store.ListByTag(ctx, "user_ana", domain.RecordCategoryRecord, 2)
	if len(entries) != 2 || entries[0].Content != "c" || entries[1].Content != "b" {
		t.Fatalf("unexpected order %+v", entries)
	}
}

func TestInMemoryMemoryStoreDeleteAllByTagAndType(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryMemoryStore()
	for _, rt := range domain.UserRecordTypes {
		_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: rt, Content: "{}"})
		_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_beto", RecordType: rt, Content: "{}"})
	}
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: "note", Content: "keep"})

	deleted, err := store.DeleteAllByTagAndType(ctx, "user_ana", domain.UserRecordTypes)
	if err != nil || deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", deleted, err)
	}
	if _, found, _ := store.FetchLatestByTag(ctx, "user_ana", domain.RecordWeaknessProfile); found {
		t.Fatalf("expected profile to be deleted")
	}
	if content, found, _ := store.FetchLatestByTag(ctx, "user_ana", "note"); !found || content != "keep" {
		t.Fatalf("expected other record types to survive")
	}
	if _, found, _ := store.FetchLatestByTag(ctx, "user_beto", domain.RecordWeaknessProfile); !found {
		t.Fatalf("expected other users to survive")
	}

	if _, err := store.DeleteAllByTagAndType(ctx, " ", domain.UserRecordTypes); !errors.Is(err, ErrEmptyTag) {
		t.Fatalf("expected ErrEmptyTag, got %v", err)
	}
}

func TestInMemoryMemoryStoreRejectsIncompleteEntries(t *testing.T) {
	store := NewInMemoryMemoryStore()
	if err := store.Append(context.Background(), domain.MemoryEntry{RecordType: "x"}); !errors.Is(err, ErrEmptyTag) {
		t.Fatalf("expected ErrEmptyTag, got %v", err)
	}
	if err := store.Append(context.Background(), domain.MemoryEntry{Tag: "user_ana"}); err == nil {
		t.Fatalf("expected error for empty record type")
	}
}

func TestInMemoryMemoryStoreCopiesMetadata(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryMemoryStore()
	md := map[string]string{"category": "trees"}
	_ = store.Append(ctx, domain.MemoryEntry{Tag: "user_ana", RecordType: "x", Content: "{}", Metadata: md})
	md["category"] = "graphs"

	entries, _ := store.ListByTag(ctx, "user_ana", "x", 1)
	if entries[0].Metadata["category"] != "trees" {
		t.Fatalf("metadata aliased with caller map")
	}
}

func TestScanMemoryEntries(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: [][]any{
		{id, "user_ana", domain.RecordWeaknessProfile, `{"a":1}`, []byte(`{"sessionCount":"2"}`), at},
		{id, "user_ana", domain.RecordWeaknessProfile, `{"a":2}`, []byte(`not json`), at},
	}}

	entries, err := scanMemoryEntries(rows)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != id.String() || entries[0].Metadata["sessionCount"] != "2" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Content != `{"a":2}` {
		t.Fatalf("bad metadata should not drop the entry")
	}

	failing := &fakeRows{err: errors.New("conn reset")}
	if _, err := scanMemoryEntries(failing); err == nil {
		t.Fatalf("expected rows error")
	}
}

func TestPgMemoryStoreQueriesBreakTiesBySeq(t *testing.T) {
	for name, query := range map[string]string{"fetch latest": fetchLatestQuery, "list by tag": listByTagQuery} {
		if !strings.Contains(query, "ORDER BY created_at DESC, seq DESC") {
			t.Fatalf("%s: expected seq tie-breaker, got %s", name, query)
		}
	}
}
