package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

// ErrSessionNotFound se devuelve cuando no existe la sesion pedida.
var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Save(ctx context.Context, session domain.InterviewSession) error
	GetByID(ctx context.Context, id string) (domain.InterviewSession, error)
	ListReportsByUser(ctx context.Context, userName string) ([]domain.SessionReport, error)
	DeleteByUser(ctx context.Context, userName string) error
}

type PgSessionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPgSessionRepository(pool *pgxpool.Pool, logger *zap.Logger) *PgSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgSessionRepository{pool: pool, logger: logger}
}

// Save hace upsert de la sesion completa como JSONB.
func (r *PgSessionRepository) Save(ctx context.Context, session domain.InterviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO interview_sessions (id, user_name, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.Config.UserName,
		string(session.Status),
		payload,
		session.CreatedAt,
		time.Now().UTC(),
	)
	return err
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id string) (domain.InterviewSession, error) {
	const query = `
		SELECT payload
		FROM interview_sessions
		WHERE id = $1
	`
	var payload []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InterviewSession{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.InterviewSession{}, err
	}
	var session domain.InterviewSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.InterviewSession{}, err
	}
	return session, nil
}

func (r *PgSessionRepository) ListReportsByUser(ctx context.Context, userName string) ([]domain.SessionReport, error) {
	const query = `
		SELECT payload -> 'report'
		FROM interview_sessions
		WHERE user_name = $1 AND payload ? 'report'
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessionReports(rows, r.logger)
}

// scanSessionReports decodifica los informes fila por fila; los que no decodifican se saltean.
func scanSessionReports(rows pgxRows, logger *zap.Logger) ([]domain.SessionReport, error) {
	reports := make([]domain.SessionReport, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var report domain.SessionReport
		if err := json.Unmarshal(raw, &report); err != nil {
			logger.Warn("skipping malformed session report", zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *PgSessionRepository) DeleteByUser(ctx context.Context, userName string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM interview_sessions WHERE user_name = $1`, userName)
	return err
}

// MemorySessionRepository guarda las sesiones en un mapa protegido por mutex.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.InterviewSession
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domain.InterviewSession)}
}

func (m *MemorySessionRepository) Save(_ context.Context, session domain.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MemorySessionRepository) GetByID(_ context.Context, id string) (domain.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.InterviewSession{}, ErrSessionNotFound
	}
	return session, nil
}

func (m *MemorySessionRepository) ListReportsByUser(_ context.Context, userName string) ([]domain.SessionReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sessions []domain.InterviewSession
	for _, s := range m.sessions {
		if s.Config.UserName == userName && s.Report != nil {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	reports := make([]domain.SessionReport, 0, len(sessions))
	for _, s := range sessions {
		reports = append(reports, *s.Report)
	}
	return reports, nil
}

func (m *MemorySessionRepository) DeleteByUser(_ context.Context, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.Config.UserName == userName {
			delete(m.sessions, id)
		}
	}
	return nil
}
