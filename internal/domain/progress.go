package domain

// CategoryStats resume el desempeno del usuario en una categoria.
type CategoryStats struct {
	Category    string    `json:"category"`
	Scores      []float64 `json:"scores"`
	Completed   bool      `json:"completed"`
	LatestScore float64   `json:"latestScore"`
	Mistakes    []string  `json:"mistakes"`
	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
}

// RepeatedMistake es una debilidad que aparece al menos dos veces en el historial.
type RepeatedMistake struct {
	Mistake string `json:"mistake"`
	Count   int    `json:"count"`
}

// ProgressStats es el paquete de estadisticas derivado del historial de categorias.
// CategoryStats respeta el orden de primera aparicion en el historial.
type ProgressStats struct {
	CategoryStats        []CategoryStats   `json:"categoryStats"`
	OverallAvg           float64           `json:"overallAvg"`
	MostImproved         *string           `json:"mostImproved"`
	MostImprovedDelta    *float64          `json:"mostImprovedDelta"`
	RepeatedMistakes     []RepeatedMistake `json:"repeatedMistakes"`
	TotalInterviews      int               `json:"totalInterviews"`
	CompletedCategories  []string          `json:"completedCategories"`
	InProgressCategories []string          `json:"inProgressCategories"`
}

// Stats devuelve las estadisticas de una categoria, si existe.
func (p ProgressStats) Stats(category string) (CategoryStats, bool) {
	for _, s := range p.CategoryStats {
		if s.Category == category {
			return s, true
		}
	}
	return CategoryStats{}, false
}

// SessionSummary es la vista resumida de una sesion terminada para el dashboard.
type SessionSummary struct {
	SessionID     string        `json:"sessionId"`
	Role          string        `json:"role"`
	InterviewType InterviewType `json:"interviewType"`
	OverallScore  float64       `json:"overallScore"`
	Date          int64         `json:"date"`
}

// ProgressView es la respuesta completa del dashboard de progreso.
type ProgressView struct {
	ProgressStats
	UserName        string           `json:"userName"`
	Sessions        []SessionSummary `json:"sessions"`
	SkillTrends     SkillAggregates  `json:"skillTrends"`
	CategoryHistory []CategoryRecord `json:"categoryHistory"`
}
