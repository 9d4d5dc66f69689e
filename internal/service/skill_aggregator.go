package service

import (
	"math"

	"interview-coach/internal/domain"
)

// Parametros de la agregacion bayesiana de habilidades.
const (
	PriorScore      = 5.0
	ConfidenceK     = 3.0
	DecayLambda     = 0.7
	MaxRecentScores = 10
)

// UpdateSkillAggregate calcula el nuevo agregado de una habilidad a partir del previo (nil si no
// existe) y una nueva observacion. No valida el rango del puntaje y no muta prev.
//
// weightedMean = sum(score_i * w_i) / sum(w_i), con w_i = lambda^(len-1-i) sobre la ventana.
// confidence = n / (n + k).
// weightedScore = confidence*weightedMean + (1-confidence)*prior.
func UpdateSkillAggregate(prev *domain.SkillAggregate, score float64) domain.SkillAggregate {
	var (
		window []float64
		n      = 1
	)
	if prev != nil {
		window = make([]float64, 0, len(prev.RecentScores)+1)
		window = append(window, prev.RecentScores...)
		n = prev.ObservationCount + 1
	}
	window = append(window, score)
	if len(window) > MaxRecentScores {
		window = append([]float64(nil), window[len(window)-MaxRecentScores:]...)
	}

	mean := decayedMean(window)
	confidence := float64(n) / (float64(n) + ConfidenceK)

	return domain.SkillAggregate{
		WeightedScore:    roundTo(confidence*mean+(1-confidence)*PriorScore, 1),
		Confidence:       roundTo(confidence, 2),
		ObservationCount: n,
		RecentScores:     window,
	}
}

// decayedMean pondera cada puntaje por lambda^edad; el mas reciente (ultimo) pesa 1.
func decayedMean(window []float64) float64 {
	var weightSum, valueSum float64
	for i, s := range window {
		w := math.Pow(DecayLambda, float64(len(window)-1-i))
		weightSum += w
		valueSum += s * w
	}
	if weightSum == 0 {
		return PriorScore
	}
	return valueSum / weightSum
}

// roundTo redondea a la cantidad de decimales indicada, mitad lejos de cero.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
