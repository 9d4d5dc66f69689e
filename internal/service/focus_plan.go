package service

import (
	"interview-coach/internal/domain"
)

const focusSkillsLimit = 2

// Umbrales de dificultad sobre el promedio de weightedScore.
const (
	hardDifficultyAbove   = 8.0
	mediumDifficultyAbove = 7.0
)

// BuildFocusPlan deriva la dificultad y la particion debil/fuerte/neutral de la proxima sesion.
// Sin perfil (o sin sesiones) devuelve el plan por defecto: facil y todo neutral.
func BuildFocusPlan(profile *domain.WeaknessProfile) domain.FocusPlan {
	if profile == nil || profile.SessionCount == 0 {
		return domain.FocusPlan{
			Weaknesses: []domain.Skill{},
			Strengths:  []domain.Skill{},
			Neutral:    domain.AllSkills(),
			Difficulty: domain.DifficultyEasy,
		}
	}

	ascending := rankSkills(profile.Aggregates, true, len(profile.Aggregates))

	weaknesses := headSkills(ascending, focusSkillsLimit)
	strengths := tailSkills(ascending, focusSkillsLimit)

	picked := make(map[domain.Skill]bool, len(weaknesses)+len(strengths))
	for _, s := range weaknesses {
		picked[s] = true
	}
	for _, s := range strengths {
		picked[s] = true
	}
	neutral := make([]domain.Skill, 0, len(domain.AllSkills()))
	for _, s := range domain.AllSkills() {
		if !picked[s] {
			neutral = append(neutral, s)
		}
	}

	return domain.FocusPlan{
		Weaknesses: weaknesses,
		Strengths:  strengths,
		Neutral:    neutral,
		Difficulty: difficultyFor(averageWeightedScore(profile.Aggregates)),
	}
}

func difficultyFor(avg float64) domain.Difficulty {
	switch {
	case avg > hardDifficultyAbove:
		return domain.DifficultyHard
	case avg > mediumDifficultyAbove:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}

func averageWeightedScore(aggs domain.SkillAggregates) float64 {
	if len(aggs) == 0 {
		return PriorScore
	}
	var sum float64
	for _, e := range aggs {
		sum += e.Aggregate.WeightedScore
	}
	return sum / float64(len(aggs))
}

func headSkills(skills []domain.Skill, n int) []domain.Skill {
	if len(skills) < n {
		n = len(skills)
	}
	return append([]domain.Skill{}, skills[:n]...)
}

func tailSkills(skills []domain.Skill, n int) []domain.Skill {
	if len(skills) < n {
		n = len(skills)
	}
	return append([]domain.Skill{}, skills[len(skills)-n:]...)
}
