package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestSkillAggregatesJSONPreservesOrder(t *testing.T) {
	var aggs SkillAggregates
	aggs.Set(SkillTimeComplexity, SkillAggregate{WeightedScore: 4.5, Confidence: 0.25, ObservationCount: 1, RecentScores: []float64{4}})
	aggs.Set(SkillOwnership, SkillAggregate{WeightedScore: 6, Confidence: 0.4, ObservationCount: 2, RecentScores: []float64{6, 8}})
	aggs.Set(Skill("odd.key"), SkillAggregate{WeightedScore: 5})
	aggs.Set(SkillTimeComplexity, SkillAggregate{WeightedScore: 4.8, Confidence: 0.4, ObservationCount: 2, RecentScores: []float64{4, 6}})

	raw, err := json.Marshal(aggs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"time_complexity":{"weightedScore":4.8,"confidence":0.4,"observationCount":2,"recentScores":[4,6]},` +
		`"ownership":{"weightedScore":6,"confidence":0.4,"observationCount":2,"recentScores":[6,8]},` +
		`"odd.key":{"weightedScore":5,"confidence":0,"observationCount":0,"recentScores":null}}`
	if string(raw) != want {
		t.Fatalf("unexpected json:\n%s\nwant\n%s", raw, want)
	}

	var decoded SkillAggregates
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Skills(), []Skill{SkillTimeComplexity, SkillOwnership, Skill("odd.key")}) {
		t.Fatalf("unexpected decoded order %v", decoded.Skills())
	}
}

func TestSkillAggregatesUnmarshalEdgeCases(t *testing.T) {
	var aggs SkillAggregates
	if err := json.Unmarshal([]byte(`{"reflection":null,"specificity":{"weightedScore":3}}`), &aggs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Skill != SkillSpecificity {
		t.Fatalf("expected null entries to be skipped, got %+v", aggs)
	}

	for _, raw := range []string{`[1]`, `{"reflection":"x"}`} {
		var bad SkillAggregates
		if err := json.Unmarshal([]byte(raw), &bad); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestSkillAggregatesCloneIsDeep(t *testing.T) {
	var aggs SkillAggregates
	aggs.Set(SkillReflection, SkillAggregate{RecentScores: []float64{1, 2}})
	clone := aggs.Clone()
	clone[0].Aggregate.RecentScores[0] = 9
	clone.Set(SkillOwnership, SkillAggregate{})

	if aggs[0].Aggregate.RecentScores[0] != 1 || len(aggs) != 1 {
		t.Fatalf("clone shares state with original")
	}
}

func TestParseSkill(t *testing.T) {
	cases := map[string]Skill{
		"Problem Solving":       SkillProblemSolving,
		" edge-case-handling ":  SkillEdgeCaseHandling,
		"STAR_STRUCTURE":        SkillSTARStructure,
		"communication clarity": SkillCommunicationClarity,
	}
	for raw, want := range cases {
		got, ok := ParseSkill(raw)
		if !ok || got != want {
			t.Fatalf("ParseSkill(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseSkill("juggling"); ok {
		t.Fatalf("expected unknown skill to be rejected")
	}
	if len(AllSkills()) != 11 || AllSkills()[0] != SkillProblemSolving || AllSkills()[10] != SkillQuantification {
		t.Fatalf("unexpected taxonomy %v", AllSkills())
	}
}

func TestSkillScoresCollapse(t *testing.T) {
	in := SkillScores{
		{Skill: SkillOwnership, Score: 2},
		{Skill: SkillReflection, Score: 5},
		{Skill: SkillOwnership, Score: 7},
	}
	want := SkillScores{
		{Skill: SkillOwnership, Score: 7},
		{Skill: SkillReflection, Score: 5},
	}
	if got := in.Collapse(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestInterviewTypeTables(t *testing.T) {
	if got := ParseInterviewType(" SWE "); got != InterviewSWE {
		t.Fatalf("expected swe, got %q", got)
	}
	if got := ParseInterviewType("astronaut"); got != InterviewGeneric {
		t.Fatalf("expected generic, got %q", got)
	}
	if d, ok := ParseDifficulty("Hard"); !ok || d != DifficultyHard {
		t.Fatalf("unexpected difficulty %q %v", d, ok)
	}
	if d, ok := ParseDifficulty(""); ok || d != DifficultyEasy {
		t.Fatalf("expected easy default, got %q %v", d, ok)
	}

	if n := len(CategoriesFor(InterviewSWE)); n != 9 {
		t.Fatalf("expected 9 swe categories, got %d", n)
	}
	if n := len(CategoriesFor(InterviewConsulting)); n != 5 {
		t.Fatalf("expected 5 consulting categories, got %d", n)
	}
	if got := CategoriesFor(InterviewBehavioral); !reflect.DeepEqual(got, []string{CategoryGeneral}) {
		t.Fatalf("expected general sentinel, got %v", got)
	}

	cats := CategoriesFor(InterviewSWE)
	cats[0] = "mutated"
	if CategoriesFor(InterviewSWE)[0] != CategoryArraysStrings {
		t.Fatalf("category table exposed to callers")
	}
	if !IsCategoryOf(InterviewConsulting, CategoryCostProblems) || IsCategoryOf(InterviewSWE, CategoryCostProblems) {
		t.Fatalf("unexpected category membership")
	}
	if len(PhasesFor("unknown")) == 0 || len(SkillsFor(InterviewBehavioral)) == 0 {
		t.Fatalf("expected fallback tables")
	}
}

func TestCategoryRecordJSONFieldNames(t *testing.T) {
	delta := 2.0
	raw, err := json.Marshal(CategoryRecord{
		Category:         CategoryArraysStrings,
		Score:            8,
		Completed:        true,
		InterviewNumber:  2,
		Timestamp:        1700000000000,
		ImprovementDelta: &delta,
		InterviewType:    InterviewSWE,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"category":"arrays_strings","score":8,"completed":true,"interviewNumber":2,"timestamp":1700000000000,"improvementDelta":2}`
	if string(raw) != want {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestSessionReportToSummary(t *testing.T) {
	report := SessionReport{
		SessionID:     "s-1",
		Role:          "Backend Engineer",
		InterviewType: InterviewSWE,
		OverallScore:  7.5,
		Summary:       "solid",
		CreatedAt:     1700000000000,
	}
	want := SessionSummary{SessionID: "s-1", Role: "Backend Engineer", InterviewType: InterviewSWE, OverallScore: 7.5, Date: 1700000000000}
	if got := report.ToSummary(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEpochMillisAccessors(t *testing.T) {
	at := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	if got := (CategoryRecord{Timestamp: at.UnixMilli()}).Time(); !got.Equal(at) {
		t.Fatalf("unexpected record time %v", got)
	}
	if got := (WeaknessProfile{LastUpdated: at.UnixMilli()}).LastUpdatedTime(); !got.Equal(at) {
		t.Fatalf("unexpected profile time %v", got)
	}
}
