package domain

import "strings"

// Skill identifica una dimension de competencia evaluada en la entrevista.
type Skill string

// Habilidades tecnicas.
const (
	SkillProblemSolving       Skill = "problem_solving"
	SkillTradeoffReasoning    Skill = "tradeoff_reasoning"
	SkillSystemDesign         Skill = "system_design"
	SkillEdgeCaseHandling     Skill = "edge_case_handling"
	SkillTimeComplexity       Skill = "time_complexity"
	SkillCommunicationClarity Skill = "communication_clarity"
)

// Habilidades de comportamiento.
const (
	SkillSTARStructure  Skill = "star_structure"
	SkillSpecificity    Skill = "specificity"
	SkillOwnership      Skill = "ownership"
	SkillReflection     Skill = "reflection"
	SkillQuantification Skill = "quantification"
)

// TechnicalSkills y BehavioralSkills forman la taxonomia cerrada de 11 habilidades.
var (
	TechnicalSkills = []Skill{
		SkillProblemSolving,
		SkillTradeoffReasoning,
		SkillSystemDesign,
		SkillEdgeCaseHandling,
		SkillTimeComplexity,
		SkillCommunicationClarity,
	}
	BehavioralSkills = []Skill{
		SkillSTARStructure,
		SkillSpecificity,
		SkillOwnership,
		SkillReflection,
		SkillQuantification,
	}
)

// AllSkills devuelve la taxonomia completa en orden canonico (tecnicas primero).
// Siempre retorna una copia nueva.
func AllSkills() []Skill {
	out := make([]Skill, 0, len(TechnicalSkills)+len(BehavioralSkills))
	out = append(out, TechnicalSkills...)
	out = append(out, BehavioralSkills...)
	return out
}

var skillLabels = map[Skill]string{
	SkillProblemSolving:       "Problem Solving",
	SkillTradeoffReasoning:    "Tradeoff Reasoning",
	SkillSystemDesign:         "System Design",
	SkillEdgeCaseHandling:     "Edge Case Handling",
	SkillTimeComplexity:       "Time Complexity Analysis",
	SkillCommunicationClarity: "Communication Clarity",
	SkillSTARStructure:        "STAR Structure",
	SkillSpecificity:          "Specificity",
	SkillOwnership:            "Ownership & Agency",
	SkillReflection:           "Reflection & Learning",
	SkillQuantification:       "Quantification",
}

// Label devuelve el nombre legible de la habilidad; si no es conocida, el identificador tal cual.
func (s Skill) Label() string {
	if l, ok := skillLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid indica si la habilidad pertenece a la taxonomia.
func (s Skill) Valid() bool {
	_, ok := skillLabels[s]
	return ok
}

// ParseSkill normaliza un identificador crudo (mayusculas, espacios, guiones) y lo valida.
func ParseSkill(raw string) (Skill, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	s := Skill(norm)
	return s, s.Valid()
}

// SkillScore es una observacion puntual de una habilidad (escala 1-10).
type SkillScore struct {
	Skill    Skill   `json:"skill"`
	Score    float64 `json:"score"`
	Evidence string  `json:"evidence,omitempty"`
}

// SkillScores es una lista ordenada de observaciones; el orden define la insercion en el perfil.
type SkillScores []SkillScore

// Collapse deja una sola observacion por habilidad: conserva la posicion de la primera
// aparicion y el valor de la ultima.
func (s SkillScores) Collapse() SkillScores {
	idx := make(map[Skill]int, len(s))
	out := make(SkillScores, 0, len(s))
	for _, sc := range s {
		if i, ok := idx[sc.Skill]; ok {
			out[i] = sc
			continue
		}
		idx[sc.Skill] = len(out)
		out = append(out, sc)
	}
	return out
}
