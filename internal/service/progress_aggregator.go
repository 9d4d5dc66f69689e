package service

import (
	"math"
	"sort"

	"interview-coach/internal/domain"
)

const repeatedMistakeMinCount = 2

// AggregateProgress deriva las estadisticas del dashboard a partir del historial de categorias.
// Es de solo lectura; el orden de las categorias es el de primera aparicion en el historial.
func AggregateProgress(history []domain.CategoryRecord) domain.ProgressStats {
	stats := groupByCategory(history)

	out := domain.ProgressStats{
		CategoryStats:        stats,
		OverallAvg:           overallAverage(history),
		RepeatedMistakes:     repeatedMistakes(history),
		TotalInterviews:      len(history),
		CompletedCategories:  []string{},
		InProgressCategories: []string{},
	}

	// Mayor mejora (ultimo - primero) entre categorias con al menos 2 registros.
	// Con empate gana la primera en aparecer.
	best := math.Inf(-1)
	for _, s := range stats {
		if len(s.Scores) < 2 {
			continue
		}
		if delta := s.Scores[len(s.Scores)-1] - s.Scores[0]; delta > best {
			best = delta
			category := s.Category
			out.MostImproved = &category
		}
	}
	if out.MostImproved != nil {
		d := roundTo(best, 1)
		out.MostImprovedDelta = &d
	}

	for _, s := range stats {
		if s.Completed {
			out.CompletedCategories = append(out.CompletedCategories, s.Category)
		} else if s.LatestScore < domain.CompletionThreshold {
			out.InProgressCategories = append(out.InProgressCategories, s.Category)
		}
	}

	return out
}

func groupByCategory(history []domain.CategoryRecord) []domain.CategoryStats {
	index := make(map[string]int)
	stats := make([]domain.CategoryStats, 0)
	for _, r := range history {
		i, ok := index[r.Category]
		if !ok {
			i = len(stats)
			index[r.Category] = i
			stats = append(stats, domain.CategoryStats{
				Category:   r.Category,
				Scores:     []float64{},
				Mistakes:   []string{},
				Strengths:  []string{},
				Weaknesses: []string{},
			})
		}
		s := &stats[i]
		s.Scores = append(s.Scores, r.Score)
		s.LatestScore = r.Score
		if r.Completed {
			s.Completed = true
		}
		s.Mistakes = append(s.Mistakes, r.Mistakes...)
		s.Strengths = append(s.Strengths, r.Strengths...)
		s.Weaknesses = append(s.Weaknesses, r.Weaknesses...)
	}
	return stats
}

// overallAverage es el promedio de todos los puntajes individuales, redondeado a 1 decimal.
func overallAverage(history []domain.CategoryRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, r := range history {
		sum += r.Score
	}
	return roundTo(sum/float64(len(history)), 1)
}

// repeatedMistakes cuenta las debilidades que aparecen 2+ veces, ordenadas por frecuencia.
func repeatedMistakes(history []domain.CategoryRecord) []domain.RepeatedMistake {
	counts := make(map[string]int)
	var order []string
	for _, r := range history {
		for _, w := range r.Weaknesses {
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	out := make([]domain.RepeatedMistake, 0)
	for _, w := range order {
		if counts[w] >= repeatedMistakeMinCount {
			out = append(out, domain.RepeatedMistake{Mistake: w, Count: counts[w]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
