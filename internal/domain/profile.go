package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SkillAggregate es la estimacion estadistica de una habilidad para un usuario.
type SkillAggregate struct {
	WeightedScore    float64   `json:"weightedScore"`
	Confidence       float64   `json:"confidence"`
	ObservationCount int       `json:"observationCount"`
	RecentScores     []float64 `json:"recentScores"`
}

// SkillAggregateEntry es un par (habilidad, agregado) dentro de SkillAggregates.
type SkillAggregateEntry struct {
	Skill     Skill
	Aggregate SkillAggregate
}

// SkillAggregates es un mapa ordenado habilidad -> agregado. El orden es el de primera insercion
// y se conserva al serializar como objeto JSON y al deserializarlo.
type SkillAggregates []SkillAggregateEntry

// Get devuelve el agregado de la habilidad, si existe.
func (a SkillAggregates) Get(skill Skill) (SkillAggregate, bool) {
	for _, e := range a {
		if e.Skill == skill {
			return e.Aggregate, true
		}
	}
	return SkillAggregate{}, false
}

// Set reemplaza el agregado en su posicion o lo agrega al final.
func (a *SkillAggregates) Set(skill Skill, agg SkillAggregate) {
	for i := range *a {
		if (*a)[i].Skill == skill {
			(*a)[i].Aggregate = agg
			return
		}
	}
	*a = append(*a, SkillAggregateEntry{Skill: skill, Aggregate: agg})
}

// Skills devuelve las claves en orden de insercion.
func (a SkillAggregates) Skills() []Skill {
	out := make([]Skill, len(a))
	for i, e := range a {
		out[i] = e.Skill
	}
	return out
}

// Clone hace una copia profunda (incluye las ventanas de puntajes).
func (a SkillAggregates) Clone() SkillAggregates {
	if a == nil {
		return nil
	}
	out := make(SkillAggregates, len(a))
	for i, e := range a {
		agg := e.Aggregate
		agg.RecentScores = append([]float64(nil), e.Aggregate.RecentScores...)
		out[i] = SkillAggregateEntry{Skill: e.Skill, Aggregate: agg}
	}
	return out
}

// MarshalJSON escribe un objeto {"skill": {...}} respetando el orden de insercion.
func (a SkillAggregates) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	for _, e := range a {
		var err error
		out, err = sjson.SetBytes(out, escapeJSONPathKey(string(e.Skill)), e.Aggregate)
		if err != nil {
			return nil, fmt.Errorf("encode aggregate %s: %w", e.Skill, err)
		}
	}
	return out, nil
}

// UnmarshalJSON lee el objeto en el orden en que aparecen las claves. Las entradas null se omiten.
func (a *SkillAggregates) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("aggregates: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*a = nil
		return nil
	}
	if !res.IsObject() {
		return errors.New("aggregates: expected object")
	}

	var (
		out    SkillAggregates
		decErr error
	)
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		var agg SkillAggregate
		if err := json.Unmarshal([]byte(value.Raw), &agg); err != nil {
			decErr = fmt.Errorf("aggregate %s: %w", key.String(), err)
			return false
		}
		out.Set(Skill(key.String()), agg)
		return true
	})
	if decErr != nil {
		return decErr
	}
	*a = out
	return nil
}

// escapeJSONPathKey escapa los caracteres con significado especial en rutas de sjson.
func escapeJSONPathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WeaknessProfile es el modelo de competencia persistente de un usuario.
type WeaknessProfile struct {
	UserName     string          `json:"userName"`
	Aggregates   SkillAggregates `json:"aggregates"`
	Weakest      []Skill         `json:"weakest"`
	Strongest    []Skill         `json:"strongest"`
	SessionCount int             `json:"sessionCount"`
	// LastUpdated en milisegundos epoch, compatible con los registros historicos.
	LastUpdated int64 `json:"lastUpdated"`
}

// LastUpdatedTime expone LastUpdated como time.Time.
func (p WeaknessProfile) LastUpdatedTime() time.Time {
	return time.UnixMilli(p.LastUpdated).UTC()
}

// Clone devuelve una copia profunda del perfil.
func (p WeaknessProfile) Clone() WeaknessProfile {
	out := p
	out.Aggregates = p.Aggregates.Clone()
	out.Weakest = append([]Skill(nil), p.Weakest...)
	out.Strongest = append([]Skill(nil), p.Strongest...)
	return out
}

// FocusPlan es la derivacion efimera de foco y dificultad para la proxima sesion.
type FocusPlan struct {
	Weaknesses []Skill    `json:"weaknesses"`
	Strengths  []Skill    `json:"strengths"`
	Neutral    []Skill    `json:"neutral"`
	Difficulty Difficulty `json:"difficulty"`
}
