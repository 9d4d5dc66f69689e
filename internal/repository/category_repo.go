package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/domain"
)

// CategoryHistoryRepository es el historial local y autoritativo de categorias por usuario.
// Es append-only y se lee ordenado por timestamp.
type CategoryHistoryRepository interface {
	Append(ctx context.Context, userName string, record domain.CategoryRecord) error
	ListByUser(ctx context.Context, userName string) ([]domain.CategoryRecord, error)
	DeleteByUser(ctx context.Context, userName string) error
}

// FilterByType devuelve los registros de un tipo de entrevista conservando el orden.
func FilterByType(history []domain.CategoryRecord, t domain.InterviewType) []domain.CategoryRecord {
	out := make([]domain.CategoryRecord, 0, len(history))
	for _, r := range history {
		if r.InterviewType == t {
			out = append(out, r)
		}
	}
	return out
}

type PgCategoryHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryHistoryRepository(pool *pgxpool.Pool) *PgCategoryHistoryRepository {
	return &PgCategoryHistoryRepository{pool: pool}
}

func (r *PgCategoryHistoryRepository) Append(ctx context.Context, userName string, record domain.CategoryRecord) error {
	const query = `
		INSERT INTO category_records (
			user_name, interview_type, category, score, completed, interview_number,
			mistakes, strengths, weaknesses, recorded_at_ms, improvement_delta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		userName,
		string(record.InterviewType),
		record.Category,
		record.Score,
		record.Completed,
		record.InterviewNumber,
		nonNil(record.Mistakes),
		nonNil(record.Strengths),
		nonNil(record.Weaknesses),
		record.Timestamp,
		record.ImprovementDelta,
	)
	return err
}

func (r *PgCategoryHistoryRepository) ListByUser(ctx context.Context, userName string) ([]domain.CategoryRecord, error) {
	const query = `
		SELECT interview_type, category, score, completed, interview_number,
			mistakes, strengths, weaknesses, recorded_at_ms, improvement_delta
		FROM category_records
		WHERE user_name = $1
		ORDER BY recorded_at_ms ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCategoryRecords(rows)
}

func (r *PgCategoryHistoryRepository) DeleteByUser(ctx context.Context, userName string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM category_records WHERE user_name = $1`, userName)
	return err
}

func scanCategoryRecords(rows pgxRows) ([]domain.CategoryRecord, error) {
	records := make([]domain.CategoryRecord, 0)
	for rows.Next() {
		var (
			rec           domain.CategoryRecord
			interviewType string
		)
		if err := rows.Scan(
			&interviewType,
			&rec.Category,
			&rec.Score,
			&rec.Completed,
			&rec.InterviewNumber,
			&rec.Mistakes,
			&rec.Strengths,
			&rec.Weaknesses,
			&rec.Timestamp,
			&rec.ImprovementDelta,
		); err != nil {
			return nil, err
		}
		rec.InterviewType = domain.InterviewType(interviewType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// MemoryCategoryHistory implementa CategoryHistoryRepository en memoria con ciclo de vida
// explicito: se crea al primer append y se borra con DeleteByUser.
type MemoryCategoryHistory struct {
	mu      sync.RWMutex
	records map[string][]domain.CategoryRecord
}

func NewMemoryCategoryHistory() *MemoryCategoryHistory {
	return &MemoryCategoryHistory{records: make(map[string][]domain.CategoryRecord)}
}

func (m *MemoryCategoryHistory) Append(_ context.Context, userName string, record domain.CategoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userName] = append(m.records[userName], cloneRecord(record))
	return nil
}

func (m *MemoryCategoryHistory) ListByUser(_ context.Context, userName string) ([]domain.CategoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.records[userName]
	out := make([]domain.CategoryRecord, len(src))
	for i, r := range src {
		out[i] = cloneRecord(r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

func (m *MemoryCategoryHistory) DeleteByUser(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userName)
	return nil
}

func cloneRecord(r domain.CategoryRecord) domain.CategoryRecord {
	out := r
	out.Mistakes = append([]string(nil), r.Mistakes...)
	out.Strengths = append([]string(nil), r.Strengths...)
	out.Weaknesses = append([]string(nil), r.Weaknesses...)
	if r.ImprovementDelta != nil {
		d := *r.ImprovementDelta
		out.ImprovementDelta = &d
	}
	return out
}
