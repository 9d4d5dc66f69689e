package domain

import "time"

// SessionStatus es el estado de una sesion de entrevista.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// SessionConfig captura como se configuro la sesion al iniciarla.
type SessionConfig struct {
	UserName         string        `json:"userName"`
	Role             string        `json:"role"`
	Company          string        `json:"company,omitempty"`
	JobDescription   string        `json:"jobDescription"`
	InterviewType    InterviewType `json:"interviewType"`
	Difficulty       Difficulty    `json:"difficulty"`
	FocusPlan        *FocusPlan    `json:"focusPlan,omitempty"`
	QuestionCategory string        `json:"questionCategory"`
	IsRetry          bool          `json:"isRetry"`
}

// InterviewSession es una sesion de entrevista en curso o terminada.
type InterviewSession struct {
	ID        string         `json:"id"`
	Config    SessionConfig  `json:"config"`
	Phases    []string       `json:"phases"`
	Skills    []Skill        `json:"skills"`
	Status    SessionStatus  `json:"status"`
	EarlyExit bool           `json:"earlyExit"`
	Report    *SessionReport `json:"report,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
}

// SessionReport es el informe de cierre que produce la evaluacion externa.
type SessionReport struct {
	SessionID        string        `json:"sessionId"`
	UserName         string        `json:"userName"`
	Role             string        `json:"role"`
	InterviewType    InterviewType `json:"interviewType"`
	QuestionCategory string        `json:"questionCategory,omitempty"`
	OverallScore     float64       `json:"overallScore"`
	SkillScores      SkillScores   `json:"skillScores"`
	Strengths        []string      `json:"strengths"`
	Weaknesses       []string      `json:"weaknesses"`
	Mistakes         []string      `json:"mistakes,omitempty"`
	Summary          string        `json:"summary"`
	EarlyExit        bool          `json:"earlyExit,omitempty"`
	// CreatedAt en milisegundos epoch.
	CreatedAt int64 `json:"createdAt"`
}

// ToSummary devuelve la vista resumida para el dashboard.
func (r SessionReport) ToSummary() SessionSummary {
	return SessionSummary{
		SessionID:     r.SessionID,
		Role:          r.Role,
		InterviewType: r.InterviewType,
		OverallScore:  r.OverallScore,
		Date:          r.CreatedAt,
	}
}
