package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/domain"
)

// MemoryStore es el contrato del store de contenido etiquetado. Es append-only: "el ultimo"
// se define por busqueda, nunca por sobrescritura.
type MemoryStore interface {
	FetchLatestByTag(ctx context.Context, tag, recordType string) (string, bool, error)
	ListByTag(ctx context.Context, tag, recordType string, limit int) ([]domain.MemoryEntry, error)
	Append(ctx context.Context, entry domain.MemoryEntry) error
	DeleteAllByTagAndType(ctx context.Context, tag string, recordTypes []string) (int64, error)
}

var ErrEmptyTag = errors.New("memory store: empty tag")

// normalizeEntry completa ID y fecha y valida los campos obligatorios.
func normalizeEntry(entry domain.MemoryEntry) (domain.MemoryEntry, error) {
	if strings.TrimSpace(entry.Tag) == "" {
		return entry, ErrEmptyTag
	}
	if strings.TrimSpace(entry.RecordType) == "" {
		return entry, errors.New("memory store: empty record type")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry, nil
}

type PgMemoryStore struct {
	pool *pgxpool.Pool
}

func NewPgMemoryStore(pool *pgxpool.Pool) *PgMemoryStore {
	return &PgMemoryStore{pool: pool}
}

func (r *PgMemoryStore) Append(ctx context.Context, entry domain.MemoryEntry) error {
	entry, err := normalizeEntry(entry)
	if err != nil {
		return err
	}
	metadata := []byte("{}")
	if entry.Metadata != nil {
		if metadata, err = json.Marshal(entry.Metadata); err != nil {
			return err
		}
	}
	const query = `
		INSERT INTO memory_entries (id, tag, record_type, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.Tag,
		entry.RecordType,
		entry.Content,
		metadata,
		entry.CreatedAt,
	)
	return err
}

// Lecturas ordenadas por created_at y luego seq: con el mismo created_at gana la ultima insertada.
const (
	fetchLatestQuery = `
		SELECT content
		FROM memory_entries
		WHERE tag = $1 AND record_type = $2
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`
	listByTagQuery = `
		SELECT id, tag, record_type, content, metadata, created_at
		FROM memory_entries
		WHERE tag = $1 AND record_type = $2
		ORDER BY created_at DESC, seq DESC
		LIMIT $3
	`
)

func (r *PgMemoryStore) FetchLatestByTag(ctx context.Context, tag, recordType string) (string, bool, error) {
	var content string
	err := r.pool.QueryRow(ctx, fetchLatestQuery, tag, recordType).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

func (r *PgMemoryStore) ListByTag(ctx context.Context, tag, recordType string, limit int) ([]domain.MemoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, listByTagQuery, tag, recordType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemoryEntries(rows)
}

func (r *PgMemoryStore) DeleteAllByTagAndType(ctx context.Context, tag string, recordTypes []string) (int64, error) {
	if strings.TrimSpace(tag) == "" {
		return 0, ErrEmptyTag
	}
	if len(recordTypes) == 0 {
		return 0, nil
	}
	const query = `
		DELETE FROM memory_entries
		WHERE tag = $1 AND record_type = ANY($2)
	`
	result, err := r.pool.Exec(ctx, query, tag, recordTypes)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanMemoryEntries(rows pgxRows) ([]domain.MemoryEntry, error) {
	var entries []domain.MemoryEntry
	for rows.Next() {
		var (
			e        domain.MemoryEntry
			id       uuid.UUID
			metadata []byte
		)
		if err := rows.Scan(
			&id,
			&e.Tag,
			&e.RecordType,
			&e.Content,
			&metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.ID = id.String()
		// Metadata corrupta no invalida la entrada: el contenido es lo que importa.
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &e.Metadata)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}

// InMemoryMemoryStore implementa MemoryStore en memoria; sirve para tests y para correr sin base.
type InMemoryMemoryStore struct {
	mu      sync.RWMutex
	entries []domain.MemoryEntry
}

func NewInMemoryMemoryStore() *InMemoryMemoryStore {
	return &InMemoryMemoryStore{}
}

func (s *InMemoryMemoryStore) Append(_ context.Context, entry domain.MemoryEntry) error {
	entry, err := normalizeEntry(entry)
	if err != nil {
		return err
	}
	if entry.Metadata != nil {
		md := make(map[string]string, len(entry.Metadata))
		for k, v := range entry.Metadata {
			md[k] = v
		}
		entry.Metadata = md
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryMemoryStore) FetchLatestByTag(ctx context.Context, tag, recordType string) (string, bool, error) {
	entries, err := s.ListByTag(ctx, tag, recordType, 1)
	if err != nil || len(entries) == 0 {
		return "", false, err
	}
	return entries[0].Content, true, nil
}

func (s *InMemoryMemoryStore) ListByTag(_ context.Context, tag, recordType string, limit int) ([]domain.MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MemoryEntry
	for _, e := range s.entries {
		if e.Tag == tag && e.RecordType == recordType {
			out = append(out, e)
		}
	}
	// Mas nuevo primero; a igual fecha gana el ultimo insertado.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	out = reverseTies(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// reverseTies invierte cada bloque de entradas con la misma fecha para que la ultima insertada
// quede primero.
func reverseTies(entries []domain.MemoryEntry) []domain.MemoryEntry {
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].CreatedAt.Equal(entries[start].CreatedAt) {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		start = end
	}
	return entries
}

func (s *InMemoryMemoryStore) DeleteAllByTagAndType(_ context.Context, tag string, recordTypes []string) (int64, error) {
	if strings.TrimSpace(tag) == "" {
		return 0, ErrEmptyTag
	}
	types := make(map[string]bool, len(recordTypes))
	for _, t := range recordTypes {
		types[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.Tag == tag && types[e.RecordType] {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}
