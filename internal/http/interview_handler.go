package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/service"
)

// InterviewHandler expone sesiones, progreso y perfil sobre InterviewService.
type InterviewHandler struct {
	logger     *zap.Logger
	interviews *service.InterviewService
}

func NewInterviewHandler(logger *zap.Logger, interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{logger: logger, interviews: interviews}
}

type startSessionRequest struct {
	UserName       string `json:"user_name" binding:"required,user_name"`
	Role           string `json:"role" binding:"required,max=200"`
	Company        string `json:"company" binding:"max=200"`
	JobDescription string `json:"job_description"`
	InterviewType  string `json:"interview_type"`
	Difficulty     string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

type skillScoreRequest struct {
	Skill    string  `json:"skill" binding:"required"`
	Score    float64 `json:"score" binding:"required,min=1,max=10"`
	Evidence string  `json:"evidence"`
}

type endSessionRequest struct {
	EarlyExit    bool                `json:"early_exit"`
	OverallScore float64             `json:"overall_score" binding:"omitempty,min=1,max=10"`
	SkillScores  []skillScoreRequest `json:"skill_scores" binding:"dive"`
	Strengths    []string            `json:"strengths"`
	Weaknesses   []string            `json:"weaknesses"`
	Mistakes     []string            `json:"mistakes"`
	Summary      string              `json:"summary"`
}

type resetRequest struct {
	UserName string `json:"user_name" binding:"required,user_name"`
}

// StartSession maneja POST /sessions.
func (h *InterviewHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.interviews.StartSession(c.Request.Context(), service.StartSessionInput{
		UserName:       req.UserName,
		Role:           req.Role,
		Company:        req.Company,
		JobDescription: req.JobDescription,
		InterviewType:  req.InterviewType,
		Difficulty:     req.Difficulty,
	})
	if err != nil {
		h.writeError(c, "start session failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// EndSession maneja POST /sessions/:id/end.
func (h *InterviewHandler) EndSession(c *gin.Context) {
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid end session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !req.EarlyExit && req.OverallScore == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "overall_score is required"})
		return
	}

	report, err := h.interviews.EndSession(c.Request.Context(), service.EndSessionInput{
		SessionID:    c.Param("id"),
		EarlyExit:    req.EarlyExit,
		OverallScore: req.OverallScore,
		SkillScores:  h.toSkillScores(req.SkillScores),
		Strengths:    req.Strengths,
		Weaknesses:   req.Weaknesses,
		Mistakes:     req.Mistakes,
		Summary:      req.Summary,
	})
	if err != nil {
		h.writeError(c, "end session failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetReport maneja GET /sessions/:id/report.
func (h *InterviewHandler) GetReport(c *gin.Context) {
	report, err := h.interviews.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get report failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetProgress maneja GET /progress?user=.
func (h *InterviewHandler) GetProgress(c *gin.Context) {
	view, err := h.interviews.Progress(c.Request.Context(), c.Query("user"))
	if err != nil {
		h.writeError(c, "get progress failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": view})
}

// GetProfile maneja GET /profile?user=. Sin perfil devuelve profile null y el plan por defecto.
func (h *InterviewHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userName := c.Query("user")

	plan, err := h.interviews.FocusPlan(ctx, userName)
	if err != nil {
		h.writeError(c, "get focus plan failed", err)
		return
	}
	profile, err := h.interviews.Profile(ctx, userName)
	if errors.Is(err, service.ErrProfileNotFound) {
		c.JSON(http.StatusOK, gin.H{"profile": nil, "focus_plan": plan})
		return
	}
	if err != nil {
		h.writeError(c, "get profile failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "focus_plan": plan})
}

// ResetUser maneja POST /reset.
func (h *InterviewHandler) ResetUser(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	deleted, err := h.interviews.ResetUser(c.Request.Context(), req.UserName)
	if err != nil {
		h.writeError(c, "reset user failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_entries": deleted})
}

// toSkillScores normaliza las habilidades y descarta las desconocidas.
func (h *InterviewHandler) toSkillScores(in []skillScoreRequest) domain.SkillScores {
	out := make(domain.SkillScores, 0, len(in))
	for _, s := range in {
		skill, ok := domain.ParseSkill(s.Skill)
		if !ok {
			h.logger.Warn("dropping unknown skill", zap.String("skill", s.Skill))
			continue
		}
		out = append(out, domain.SkillScore{Skill: skill, Score: s.Score, Evidence: s.Evidence})
	}
	return out
}

func (h *InterviewHandler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUserName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user name"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrSessionNotEnded):
		c.JSON(http.StatusConflict, gin.H{"error": "session not ended"})
	case errors.Is(err, service.ErrLockTimeout):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "user busy, retry"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
