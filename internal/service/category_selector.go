package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"interview-coach/internal/domain"
)

// RandSource es la fuente de aleatoriedad del selector; *rand.Rand de math/rand/v2 la satisface.
type RandSource interface {
	IntN(n int) int
}

// lockedRand protege un *rand.Rand, que no es seguro para uso concurrente.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSource crea una fuente PCG; seed 0 usa el reloj.
func NewRandSource(seed uint64) RandSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// CategorySelector decide la proxima categoria a partir del historial del usuario.
// No guarda estado propio: todo sale del historial recibido.
type CategorySelector struct {
	rnd RandSource
}

// NewCategorySelector crea un selector; con rnd nil usa una fuente sembrada con el reloj.
func NewCategorySelector(rnd RandSource) *CategorySelector {
	if rnd == nil {
		rnd = NewRandSource(0)
	}
	return &CategorySelector{rnd: rnd}
}

// SelectNext elige la categoria y marca si la sesion es un reintento.
//
//   - historial vacio: eleccion uniforme entre las disponibles.
//   - ultimo puntaje < 7.5: se repite la ultima categoria, sin azar.
//   - ultimo puntaje >= 7.5: uniforme entre las no superadas; si todas estan superadas,
//     uniforme entre todas.
func (s *CategorySelector) SelectNext(t domain.InterviewType, history []domain.CategoryRecord) domain.CategorySelection {
	available := domain.CategoriesFor(t)

	if len(history) == 0 {
		return domain.CategorySelection{Category: s.pick(available)}
	}

	last := history[len(history)-1]
	if !last.Passed() {
		return domain.CategorySelection{Category: last.Category, IsRetry: true}
	}

	completed := make(map[string]bool, len(history)+1)
	for _, r := range history {
		if r.Passed() {
			completed[r.Category] = true
		}
	}
	completed[last.Category] = true

	uncompleted := make([]string, 0, len(available))
	for _, c := range available {
		if !completed[c] {
			uncompleted = append(uncompleted, c)
		}
	}
	if len(uncompleted) > 0 {
		return domain.CategorySelection{Category: s.pick(uncompleted)}
	}
	return domain.CategorySelection{Category: s.pick(available)}
}

func (s *CategorySelector) pick(options []string) string {
	if len(options) == 1 {
		return options[0]
	}
	return options[s.rnd.IntN(len(options))]
}
