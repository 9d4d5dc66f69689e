package domain

import "time"

// CompletionThreshold es el puntaje minimo para considerar una categoria superada.
const CompletionThreshold = 7.5

// CategoryRecord es una entrada del historial append-only de categorias de un usuario.
type CategoryRecord struct {
	Category        string   `json:"category"`
	Score           float64  `json:"score"`
	Completed       bool     `json:"completed"`
	InterviewNumber int      `json:"interviewNumber"`
	Mistakes        []string `json:"mistakes,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	// Timestamp en milisegundos epoch.
	Timestamp        int64    `json:"timestamp"`
	ImprovementDelta *float64 `json:"improvementDelta,omitempty"`

	// InterviewType no forma parte del JSON historico; viaja como columna o metadata.
	InterviewType InterviewType `json:"-"`
}

// Time expone Timestamp como time.Time.
func (r CategoryRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// Passed indica si el puntaje alcanza el umbral de completitud.
func (r CategoryRecord) Passed() bool {
	return r.Score >= CompletionThreshold
}

// CategorySelection es la decision del selector para la proxima sesion.
type CategorySelection struct {
	Category string `json:"category"`
	IsRetry  bool   `json:"isRetry"`
}
