package domain

import "strings"

// InterviewType clasifica la entrevista y determina categorias, fases y habilidades.
type InterviewType string

const (
	InterviewSWE        InterviewType = "swe"
	InterviewConsulting InterviewType = "consulting"
	InterviewProduct    InterviewType = "product"
	InterviewBehavioral InterviewType = "behavioral"
	InterviewGeneric    InterviewType = "generic"
)

// ParseInterviewType normaliza el tipo; valores desconocidos caen en generic.
func ParseInterviewType(raw string) InterviewType {
	switch t := InterviewType(strings.ToLower(strings.TrimSpace(raw))); t {
	case InterviewSWE, InterviewConsulting, InterviewProduct, InterviewBehavioral, InterviewGeneric:
		return t
	default:
		return InterviewGeneric
	}
}

// Difficulty es el nivel de dificultad de la sesion.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty devuelve la dificultad y si el valor era reconocido.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return DifficultyEasy, false
	}
}

// CategoryGeneral es la categoria centinela para tipos sin conjunto propio.
const CategoryGeneral = "general"

// Categorias de preguntas para entrevistas de software.
const (
	CategoryArraysStrings         = "arrays_strings"
	CategoryHashMaps              = "hash_maps"
	CategoryLinkedLists           = "linked_lists"
	CategoryStacksQueues          = "stacks_queues"
	CategoryTrees                 = "trees"
	CategoryGraphs                = "graphs"
	CategoryDynamicProgramming    = "dynamic_programming"
	CategoryRecursionBacktracking = "recursion_backtracking"
	CategoryHeapsPriorityQueues   = "heaps_priority_queues"
)

// Categorias de casos de consultoria.
const (
	CategoryRevenueProblems        = "revenue_problems"
	CategoryCostProblems           = "cost_problems"
	CategoryStrategicDecisions     = "strategic_decisions"
	CategoryInvestmentDecisions    = "investment_decisions"
	CategoryOperationalBottlenecks = "operational_bottlenecks"
)

var categoriesByType = map[InterviewType][]string{
	InterviewSWE: {
		CategoryArraysStrings,
		CategoryHashMaps,
		CategoryLinkedLists,
		CategoryStacksQueues,
		CategoryTrees,
		CategoryGraphs,
		CategoryDynamicProgramming,
		CategoryRecursionBacktracking,
		CategoryHeapsPriorityQueues,
	},
	InterviewConsulting: {
		CategoryRevenueProblems,
		CategoryCostProblems,
		CategoryStrategicDecisions,
		CategoryInvestmentDecisions,
		CategoryOperationalBottlenecks,
	},
}

// CategoriesFor devuelve el conjunto cerrado de categorias del tipo.
// Tipos vacios o sin conjunto propio reciben solo la centinela "general".
func CategoriesFor(t InterviewType) []string {
	cats, ok := categoriesByType[t]
	if !ok || len(cats) == 0 {
		return []string{CategoryGeneral}
	}
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

// IsCategoryOf indica si la categoria pertenece al conjunto del tipo.
func IsCategoryOf(t InterviewType, category string) bool {
	for _, c := range CategoriesFor(t) {
		if c == category {
			return true
		}
	}
	return false
}

var phasesByType = map[InterviewType][]string{
	InterviewSWE:        {"coding_problem", "clarifications", "optimization", "complexity_analysis", "edge_cases", "behavioral"},
	InterviewConsulting: {"case_prompt", "framework", "challenge_assumptions", "quant_drill", "recommendation"},
	InterviewProduct:    {"product_sense", "metrics", "tradeoffs", "prioritization", "behavioral"},
	InterviewBehavioral: {"intro", "leadership", "conflict", "failure", "teamwork", "growth"},
	InterviewGeneric:    {"intro", "skill_probe_1", "skill_probe_2", "scenario", "depth", "behavioral"},
}

// PhasesFor devuelve las fases de la entrevista para el tipo.
func PhasesFor(t InterviewType) []string {
	phases, ok := phasesByType[t]
	if !ok {
		phases = phasesByType[InterviewGeneric]
	}
	out := make([]string, len(phases))
	copy(out, phases)
	return out
}

var skillsByType = map[InterviewType][]Skill{
	InterviewSWE:        {SkillProblemSolving, SkillTradeoffReasoning, SkillSystemDesign, SkillEdgeCaseHandling, SkillTimeComplexity, SkillCommunicationClarity},
	InterviewConsulting: {SkillProblemSolving, SkillTradeoffReasoning, SkillCommunicationClarity, SkillSpecificity, SkillQuantification},
	InterviewProduct:    {SkillProblemSolving, SkillTradeoffReasoning, SkillCommunicationClarity, SkillSpecificity, SkillQuantification, SkillOwnership},
	InterviewBehavioral: {SkillSTARStructure, SkillSpecificity, SkillOwnership, SkillReflection, SkillQuantification, SkillCommunicationClarity},
	InterviewGeneric:    {SkillProblemSolving, SkillCommunicationClarity, SkillSTARStructure, SkillSpecificity, SkillOwnership},
}

// SkillsFor devuelve las habilidades que se evaluan en el tipo de entrevista.
func SkillsFor(t InterviewType) []Skill {
	skills, ok := skillsByType[t]
	if !ok {
		skills = skillsByType[InterviewGeneric]
	}
	out := make([]Skill, len(skills))
	copy(out, skills)
	return out
}
