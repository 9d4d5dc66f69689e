package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

var (
	ErrSessionNotFound        = repository.ErrSessionNotFound
	ErrSessionNotEnded        = errors.New("session not ended")
	ErrInvalidUserName        = errors.New("invalid user name")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrInterviewNotConfigured = errors.New("interview service not configured")
)

const (
	defaultStoreTimeout = 2 * time.Second
	profileScanLimit    = 20
	reportScanLimit     = 50
	historyScanLimit    = 200
)

// InterviewService orquesta el ciclo de una sesion: plan de foco y categoria al iniciar,
// perfil e historial al terminar, y el dashboard de progreso.
type InterviewService struct {
	logger       *zap.Logger
	memory       repository.MemoryStore
	history      repository.CategoryHistoryRepository
	sessions     repository.SessionRepository
	locker       UserLocker
	selector     *CategorySelector
	storeTimeout time.Duration
	now          func() time.Time
}

func NewInterviewService(
	logger *zap.Logger,
	memory repository.MemoryStore,
	history repository.CategoryHistoryRepository,
	sessions repository.SessionRepository,
	locker UserLocker,
	selector *CategorySelector,
	storeTimeout time.Duration,
) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewKeyedMutexLocker()
	}
	if selector == nil {
		selector = NewCategorySelector(nil)
	}
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &InterviewService{
		logger:       logger,
		memory:       memory,
		history:      history,
		sessions:     sessions,
		locker:       locker,
		selector:     selector,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type StartSessionInput struct {
	UserName       string
	Role           string
	Company        string
	JobDescription string
	InterviewType  string
	Difficulty     string
}

type EndSessionInput struct {
	SessionID    string
	EarlyExit    bool
	OverallScore float64
	SkillScores  domain.SkillScores
	Strengths    []string
	Weaknesses   []string
	Mistakes     []string
	Summary      string
}

func (s *InterviewService) StartSession(ctx context.Context, input StartSessionInput) (domain.InterviewSession, error) {
	if s.history == nil || s.sessions == nil {
		return domain.InterviewSession{}, ErrInterviewNotConfigured
	}
	userName, err := normalizeUserName(input.UserName)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	interviewType := domain.ParseInterviewType(input.InterviewType)

	profile := s.loadProfile(ctx, userName)
	plan := BuildFocusPlan(profile)

	history, _, err := s.listHistory(ctx, userName)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	selection := s.selector.SelectNext(interviewType, repository.FilterByType(history, interviewType))

	difficulty, _ := domain.ParseDifficulty(input.Difficulty)
	if len(plan.Weaknesses) > 0 {
		difficulty = plan.Difficulty
	}

	session := domain.InterviewSession{
		ID: uuid.NewString(),
		Config: domain.SessionConfig{
			UserName:         userName,
			Role:             strings.TrimSpace(input.Role),
			Company:          strings.TrimSpace(input.Company),
			JobDescription:   strings.TrimSpace(input.JobDescription),
			InterviewType:    interviewType,
			Difficulty:       difficulty,
			FocusPlan:        &plan,
			QuestionCategory: selection.Category,
			IsRetry:          selection.IsRetry,
		},
		Phases:    domain.PhasesFor(interviewType),
		Skills:    domain.SkillsFor(interviewType),
		Status:    domain.SessionActive,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session started",
		zap.String("user", userName),
		zap.String("session_id", session.ID),
		zap.String("interview_type", string(interviewType)),
		zap.String("category", selection.Category),
		zap.Bool("is_retry", selection.IsRetry),
		zap.String("difficulty", string(difficulty)),
	)
	return session, nil
}

// EndSession cierra la sesion y guarda su informe. Salvo salida anticipada, actualiza el perfil
// y agrega el registro de categoria. Un segundo cierre devuelve el informe ya guardado.
func (s *InterviewService) EndSession(ctx context.Context, input EndSessionInput) (domain.SessionReport, error) {
	if s.history == nil || s.sessions == nil {
		return domain.SessionReport{}, ErrInterviewNotConfigured
	}
	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		return domain.SessionReport{}, err
	}
	userName := session.Config.UserName

	unlock, err := s.locker.Lock(ctx, userName)
	if err != nil {
		return domain.SessionReport{}, fmt.Errorf("lock user %s: %w", userName, err)
	}
	defer unlock()

	// Releer bajo el lock: otra llamada pudo haber cerrado la sesion.
	session, err = s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		return domain.SessionReport{}, err
	}
	if session.Status == domain.SessionCompleted && session.Report != nil {
		s.logger.Info("session already ended", zap.String("session_id", session.ID))
		return *session.Report, nil
	}

	now := s.now()
	report := domain.SessionReport{
		SessionID:        session.ID,
		UserName:         userName,
		Role:             session.Config.Role,
		InterviewType:    session.Config.InterviewType,
		QuestionCategory: session.Config.QuestionCategory,
		OverallScore:     input.OverallScore,
		SkillScores:      input.SkillScores,
		Strengths:        nonNilStrings(input.Strengths),
		Weaknesses:       nonNilStrings(input.Weaknesses),
		Mistakes:         input.Mistakes,
		Summary:          input.Summary,
		EarlyExit:        input.EarlyExit,
		CreatedAt:        now.UnixMilli(),
	}

	if !input.EarlyExit {
		category := session.Config.QuestionCategory
		if category == "" {
			category = domain.CategoryGeneral
		}
		record := domain.CategoryRecord{
			Category:      category,
			Score:         input.OverallScore,
			Mistakes:      input.Mistakes,
			Strengths:     input.Strengths,
			Weaknesses:    input.Weaknesses,
			Timestamp:     now.UnixMilli(),
			InterviewType: session.Config.InterviewType,
		}
		// El perfil se escribe solo despues de que el historial acepta el registro.
		if _, err := s.appendCategoryRecordLocked(ctx, userName, record); err != nil {
			return domain.SessionReport{}, err
		}

		updated := UpdateWeaknessProfile(s.loadProfile(ctx, userName), userName, input.SkillScores, now)
		s.appendMemory(ctx, userName, domain.RecordWeaknessProfile, updated, map[string]string{
			"sessionCount": fmt.Sprint(updated.SessionCount),
		})
	}

	s.appendMemory(ctx, userName, domain.RecordSessionReport, report, map[string]string{
		"sessionId": session.ID,
		"earlyExit": fmt.Sprint(input.EarlyExit),
	})

	session.Status = domain.SessionCompleted
	session.EarlyExit = input.EarlyExit
	session.Report = &report
	session.EndedAt = &now
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.SessionReport{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session ended",
		zap.String("user", userName),
		zap.String("session_id", session.ID),
		zap.Float64("overall_score", input.OverallScore),
		zap.Bool("early_exit", input.EarlyExit),
	)
	return report, nil
}

// Report devuelve el informe de una sesion terminada.
func (s *InterviewService) Report(ctx context.Context, sessionID string) (domain.SessionReport, error) {
	if s.sessions == nil {
		return domain.SessionReport{}, ErrInterviewNotConfigured
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.SessionReport{}, err
	}
	if session.Report == nil {
		return domain.SessionReport{}, ErrSessionNotEnded
	}
	return *session.Report, nil
}

// AppendCategoryRecord completa numero de entrevista, estado y mejora del registro y lo agrega
// al historial del usuario.
func (s *InterviewService) AppendCategoryRecord(ctx context.Context, userName string, record domain.CategoryRecord) (domain.CategoryRecord, error) {
	if s.history == nil {
		return domain.CategoryRecord{}, ErrInterviewNotConfigured
	}
	userName, err := normalizeUserName(userName)
	if err != nil {
		return domain.CategoryRecord{}, err
	}
	unlock, err := s.locker.Lock(ctx, userName)
	if err != nil {
		return domain.CategoryRecord{}, fmt.Errorf("lock user %s: %w", userName, err)
	}
	defer unlock()

	return s.appendCategoryRecordLocked(ctx, userName, record)
}

func (s *InterviewService) appendCategoryRecordLocked(ctx context.Context, userName string, record domain.CategoryRecord) (domain.CategoryRecord, error) {
	history, restored, err := s.listHistory(ctx, userName)
	if err != nil {
		return domain.CategoryRecord{}, err
	}
	if restored {
		for _, r := range history {
			if err := s.history.Append(ctx, userName, r); err != nil {
				return domain.CategoryRecord{}, fmt.Errorf("restore category history: %w", err)
			}
		}
		s.logger.Info("category history restored from memory store", zap.String("user", userName), zap.Int("records", len(history)))
	}
	if record.InterviewType == "" {
		record.InterviewType = domain.InterviewGeneric
	}
	if record.Timestamp == 0 {
		record.Timestamp = s.now().UnixMilli()
	}
	record.InterviewNumber = len(history) + 1
	record.Completed = record.Passed()
	record.ImprovementDelta = nil

	sameType := repository.FilterByType(history, record.InterviewType)
	for i := len(sameType) - 1; i >= 0; i-- {
		if sameType[i].Category == record.Category {
			delta := roundTo(record.Score-sameType[i].Score, 1)
			record.ImprovementDelta = &delta
			break
		}
	}

	if err := s.history.Append(ctx, userName, record); err != nil {
		return domain.CategoryRecord{}, fmt.Errorf("append category record: %w", err)
	}
	s.appendMemory(ctx, userName, domain.RecordCategoryRecord, record, map[string]string{
		"interviewType": string(record.InterviewType),
		"category":      record.Category,
	})
	return record, nil
}

// Progress arma el dashboard: estadisticas del historial local, resumen de sesiones y
// tendencias por habilidad del perfil.
func (s *InterviewService) Progress(ctx context.Context, userName string) (domain.ProgressView, error) {
	if s.history == nil || s.sessions == nil {
		return domain.ProgressView{}, ErrInterviewNotConfigured
	}
	userName, err := normalizeUserName(userName)
	if err != nil {
		return domain.ProgressView{}, err
	}

	// Historial, informes y perfil se leen en paralelo; solo el historial es obligatorio.
	var (
		history []domain.CategoryRecord
		reports []domain.SessionReport
		profile *domain.WeaknessProfile
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, _, err = s.listHistory(gCtx, userName)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.sessions.ListReportsByUser(gCtx, userName)
		if err != nil {
			s.logger.Warn("list session reports failed", zap.String("user", userName), zap.Error(err))
			reports = nil
		}
		if len(reports) == 0 {
			reports = s.storedReports(gCtx, userName)
		}
		return nil
	})
	g.Go(func() error {
		profile = s.loadProfile(gCtx, userName)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ProgressView{}, err
	}

	view := domain.ProgressView{
		ProgressStats:   AggregateProgress(history),
		UserName:        userName,
		Sessions:        make([]domain.SessionSummary, 0, len(reports)),
		SkillTrends:     domain.SkillAggregates{},
		CategoryHistory: history,
	}
	for _, r := range reports {
		view.Sessions = append(view.Sessions, r.ToSummary())
	}
	if profile != nil && profile.Aggregates != nil {
		view.SkillTrends = profile.Aggregates
	}
	return view, nil
}

func (s *InterviewService) Profile(ctx context.Context, userName string) (domain.WeaknessProfile, error) {
	userName, err := normalizeUserName(userName)
	if err != nil {
		return domain.WeaknessProfile{}, err
	}
	profile := s.loadProfile(ctx, userName)
	if profile == nil {
		return domain.WeaknessProfile{}, ErrProfileNotFound
	}
	return *profile, nil
}

func (s *InterviewService) FocusPlan(ctx context.Context, userName string) (domain.FocusPlan, error) {
	userName, err := normalizeUserName(userName)
	if err != nil {
		return domain.FocusPlan{}, err
	}
	return BuildFocusPlan(s.loadProfile(ctx, userName)), nil
}

// ResetUser borra historial, sesiones y todo el contenido del usuario en el store de memoria.
// Devuelve cuantas entradas del store se borraron.
func (s *InterviewService) ResetUser(ctx context.Context, userName string) (int64, error) {
	if s.history == nil || s.sessions == nil {
		return 0, ErrInterviewNotConfigured
	}
	userName, err := normalizeUserName(userName)
	if err != nil {
		return 0, err
	}
	unlock, err := s.locker.Lock(ctx, userName)
	if err != nil {
		return 0, fmt.Errorf("lock user %s: %w", userName, err)
	}
	defer unlock()

	if err := s.history.DeleteByUser(ctx, userName); err != nil {
		return 0, fmt.Errorf("delete category history: %w", err)
	}
	if err := s.sessions.DeleteByUser(ctx, userName); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	var deleted int64
	if s.memory != nil {
		storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
		deleted, err = s.memory.DeleteAllByTagAndType(storeCtx, domain.UserTag(userName), domain.UserRecordTypes)
		if err != nil {
			s.logger.Warn("memory store reset failed", zap.String("user", userName), zap.Error(err))
			deleted = 0
		}
	}

	s.logger.Info("user data reset", zap.String("user", userName), zap.Int64("memory_entries", deleted))
	return deleted, nil
}

// loadProfile busca el perfil mas reciente. Errores del store y contenido corrupto se tratan
// como ausencia; si el ultimo esta corrupto se prueba con los anteriores.
func (s *InterviewService) loadProfile(ctx context.Context, userName string) *domain.WeaknessProfile {
	if s.memory == nil {
		return nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tag := domain.UserTag(userName)
	content, found, err := s.memory.FetchLatestByTag(storeCtx, tag, domain.RecordWeaknessProfile)
	if err != nil {
		s.logger.Warn("fetch profile failed", zap.String("user", userName), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	if profile, err := decodeProfile(content); err == nil {
		return &profile
	}

	s.logger.Warn("latest profile is malformed, scanning older entries", zap.String("user", userName))
	entries, err := s.memory.ListByTag(storeCtx, tag, domain.RecordWeaknessProfile, profileScanLimit)
	if err != nil {
		s.logger.Warn("list profiles failed", zap.String("user", userName), zap.Error(err))
		return nil
	}
	for _, e := range entries {
		if profile, err := decodeProfile(e.Content); err == nil {
			return &profile
		}
	}
	return nil
}

// listHistory lee el historial local. Si esta vacio lo reconstruye con los category_record
// espejados en el store de memoria; restored indica que los registros no estan en el historial local.
func (s *InterviewService) listHistory(ctx context.Context, userName string) ([]domain.CategoryRecord, bool, error) {
	history, err := s.history.ListByUser(ctx, userName)
	if err != nil {
		return nil, false, fmt.Errorf("list category history: %w", err)
	}
	if len(history) > 0 {
		return history, false, nil
	}
	stored := s.storedHistory(ctx, userName)
	if len(stored) == 0 {
		return history, false, nil
	}
	return stored, true, nil
}

// storedHistory lee los category_record del store de memoria, del mas viejo al mas nuevo.
func (s *InterviewService) storedHistory(ctx context.Context, userName string) []domain.CategoryRecord {
	if s.memory == nil {
		return nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.memory.ListByTag(storeCtx, domain.UserTag(userName), domain.RecordCategoryRecord, historyScanLimit)
	if err != nil {
		s.logger.Warn("list stored category records failed", zap.String("user", userName), zap.Error(err))
		return nil
	}
	records := make([]domain.CategoryRecord, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		rec, err := decodeCategoryRecord(entries[i].Content)
		if err != nil {
			s.logger.Warn("skipping malformed category record", zap.String("entry_id", entries[i].ID), zap.Error(err))
			continue
		}
		rec.InterviewType = domain.ParseInterviewType(entries[i].Metadata["interviewType"])
		records = append(records, rec)
	}
	return records
}

// storedReports lee los informes guardados en el store de memoria, del mas viejo al mas nuevo.
func (s *InterviewService) storedReports(ctx context.Context, userName string) []domain.SessionReport {
	if s.memory == nil {
		return nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.memory.ListByTag(storeCtx, domain.UserTag(userName), domain.RecordSessionReport, reportScanLimit)
	if err != nil {
		s.logger.Warn("list stored reports failed", zap.String("user", userName), zap.Error(err))
		return nil
	}
	reports := make([]domain.SessionReport, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		report, err := decodeSessionReport(entries[i].Content)
		if err != nil {
			s.logger.Warn("skipping malformed session report", zap.String("entry_id", entries[i].ID), zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// appendMemory espeja un registro en el store de memoria. Los fallos se registran y no cortan
// la operacion.
func (s *InterviewService) appendMemory(ctx context.Context, userName, recordType string, payload any, metadata map[string]string) {
	if s.memory == nil {
		return
	}
	content, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode memory content failed", zap.String("record_type", recordType), zap.Error(err))
		return
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entry := domain.MemoryEntry{
		Tag:        domain.UserTag(userName),
		RecordType: recordType,
		Content:    string(content),
		Metadata:   metadata,
		CreatedAt:  s.now(),
	}
	if err := s.memory.Append(storeCtx, entry); err != nil {
		s.logger.Warn("memory store append failed",
			zap.String("user", userName),
			zap.String("record_type", recordType),
			zap.Error(err),
		)
	}
}

func normalizeUserName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrInvalidUserName
	}
	return name, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
