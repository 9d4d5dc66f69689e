package service

import (
	"sort"
	"time"

	"interview-coach/internal/domain"
)

const rankedSkillsLimit = 3

// UpdateWeaknessProfile aplica las observaciones de una sesion completa sobre el perfil.
// existing nunca se muta: se trabaja sobre una copia profunda.
//
// Regla dura: el caller NO debe invocarlo para sesiones terminadas por salida anticipada,
// los datos parciales distorsionan las estimaciones de largo plazo.
func UpdateWeaknessProfile(existing *domain.WeaknessProfile, userName string, scores domain.SkillScores, now time.Time) domain.WeaknessProfile {
	var profile domain.WeaknessProfile
	if existing != nil {
		profile = existing.Clone()
	} else {
		profile = domain.WeaknessProfile{
			UserName:    userName,
			Aggregates:  domain.SkillAggregates{},
			Weakest:     []domain.Skill{},
			Strongest:   []domain.Skill{},
			LastUpdated: now.UnixMilli(),
		}
	}

	for _, sc := range scores.Collapse() {
		var prev *domain.SkillAggregate
		if agg, ok := profile.Aggregates.Get(sc.Skill); ok {
			prev = &agg
		}
		profile.Aggregates.Set(sc.Skill, UpdateSkillAggregate(prev, sc.Score))
	}

	profile.Weakest = rankSkills(profile.Aggregates, true, rankedSkillsLimit)
	profile.Strongest = rankSkills(profile.Aggregates, false, rankedSkillsLimit)
	profile.SessionCount++
	profile.LastUpdated = now.UnixMilli()

	return profile
}

// rankSkills ordena por weightedScore (ascendente o descendente) y devuelve las primeras limit.
// Los empates conservan el orden de insercion.
func rankSkills(aggs domain.SkillAggregates, ascending bool, limit int) []domain.Skill {
	sorted := make(domain.SkillAggregates, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].Aggregate.WeightedScore < sorted[j].Aggregate.WeightedScore
		}
		return sorted[i].Aggregate.WeightedScore > sorted[j].Aggregate.WeightedScore
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted.Skills()
}
