package service

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"interview-coach/internal/domain"
)

func scoresOf(pairs ...any) domain.SkillScores {
	out := make(domain.SkillScores, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.SkillScore{Skill: pairs[i].(domain.Skill), Score: pairs[i+1].(float64)})
	}
	return out
}

func TestUpdateWeaknessProfileFromScratch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	profile := UpdateWeaknessProfile(nil, "ana", scoresOf(
		domain.SkillProblemSolving, 4.0,
		domain.SkillCommunicationClarity, 9.0,
		domain.SkillSystemDesign, 6.0,
		domain.SkillOwnership, 7.0,
	), now)

	if profile.UserName != "ana" || profile.SessionCount != 1 {
		t.Fatalf("unexpected profile header %+v", profile)
	}
	if profile.LastUpdated != now.UnixMilli() {
		t.Fatalf("expected lastUpdated %d, got %d", now.UnixMilli(), profile.LastUpdated)
	}

	want := map[domain.Skill]float64{
		domain.SkillProblemSolving:       4.8,
		domain.SkillCommunicationClarity: 6.0,
		domain.SkillSystemDesign:         5.3,
		domain.SkillOwnership:            5.5,
	}
	for skill, score := range want {
		agg, ok := profile.Aggregates.Get(skill)
		if !ok || agg.WeightedScore != score {
			t.Fatalf("%s: expected %.1f, got %+v (found=%v)", skill, score, agg, ok)
		}
	}

	expectedWeakest := []domain.Skill{domain.SkillProblemSolving, domain.SkillSystemDesign, domain.SkillOwnership}
	if !reflect.DeepEqual(profile.Weakest, expectedWeakest) {
		t.Fatalf("expected weakest %v, got %v", expectedWeakest, profile.Weakest)
	}
	expectedStrongest := []domain.Skill{domain.SkillCommunicationClarity, domain.SkillOwnership, domain.SkillSystemDesign}
	if !reflect.DeepEqual(profile.Strongest, expectedStrongest) {
		t.Fatalf("expected strongest %v, got %v", expectedStrongest, profile.Strongest)
	}
}

func TestUpdateWeaknessProfileTiesKeepInsertionOrder(t *testing.T) {
	profile := UpdateWeaknessProfile(nil, "ana", scoresOf(
		domain.SkillReflection, 5.0,
		domain.SkillSpecificity, 5.0,
		domain.SkillOwnership, 5.0,
		domain.SkillQuantification, 5.0,
	), time.Now())

	expected := []domain.Skill{domain.SkillReflection, domain.SkillSpecificity, domain.SkillOwnership}
	if !reflect.DeepEqual(profile.Weakest, expected) {
		t.Fatalf("expected weakest %v, got %v", expected, profile.Weakest)
	}
	if !reflect.DeepEqual(profile.Strongest, expected) {
		t.Fatalf("expected strongest %v, got %v", expected, profile.Strongest)
	}
}

func TestUpdateWeaknessProfileDoesNotMutateExisting(t *testing.T) {
	first := UpdateWeaknessProfile(nil, "ana", scoresOf(
		domain.SkillProblemSolving, 6.0,
		domain.SkillSystemDesign, 7.0,
	), time.UnixMilli(1000))
	snapshot := first.Clone()

	second := UpdateWeaknessProfile(&first, "ana", scoresOf(
		domain.SkillProblemSolving, 9.0,
		domain.SkillReflection, 3.0,
	), time.UnixMilli(2000))

	if !reflect.DeepEqual(first, snapshot) {
		t.Fatalf("existing profile mutated:\nbefore %+v\nafter  %+v", snapshot, first)
	}
	if second.SessionCount != 2 {
		t.Fatalf("expected sessionCount 2, got %d", second.SessionCount)
	}
	agg, _ := second.Aggregates.Get(domain.SkillProblemSolving)
	if agg.ObservationCount != 2 || !reflect.DeepEqual(agg.RecentScores, []float64{6, 9}) {
		t.Fatalf("unexpected problem solving aggregate %+v", agg)
	}
	if skills := second.Aggregates.Skills(); !reflect.DeepEqual(skills, []domain.Skill{
		domain.SkillProblemSolving, domain.SkillSystemDesign, domain.SkillReflection,
	}) {
		t.Fatalf("unexpected insertion order %v", skills)
	}
}

func TestUpdateWeaknessProfileCollapsesRepeatedSkill(t *testing.T) {
	profile := UpdateWeaknessProfile(nil, "ana", scoresOf(
		domain.SkillOwnership, 2.0,
		domain.SkillReflection, 6.0,
		domain.SkillOwnership, 8.0,
	), time.Now())

	agg, _ := profile.Aggregates.Get(domain.SkillOwnership)
	if agg.ObservationCount != 1 || agg.RecentScores[0] != 8 {
		t.Fatalf("expected last value to win, got %+v", agg)
	}
	if profile.Aggregates[0].Skill != domain.SkillOwnership {
		t.Fatalf("expected first position to be kept, got %v", profile.Aggregates.Skills())
	}
}

func TestUpdateWeaknessProfileEmptyScoresStillCountsSession(t *testing.T) {
	profile := UpdateWeaknessProfile(nil, "ana", nil, time.Now())
	if profile.SessionCount != 1 || len(profile.Aggregates) != 0 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Weakest == nil || profile.Strongest == nil {
		t.Fatalf("expected empty, non-nil rankings")
	}
}

func TestWeaknessProfileJSONKeepsAggregateOrder(t *testing.T) {
	profile := UpdateWeaknessProfile(nil, "ana", scoresOf(
		domain.SkillTimeComplexity, 4.0,
		domain.SkillProblemSolving, 8.0,
		domain.SkillSTARStructure, 6.0,
	), time.UnixMilli(42))

	raw, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, field := range []string{`"userName"`, `"aggregates"`, `"weakest"`, `"strongest"`, `"sessionCount"`, `"lastUpdated":42`, `"weightedScore"`, `"recentScores"`} {
		if !strings.Contains(s, field) {
			t.Fatalf("expected %s in %s", field, s)
		}
	}
	tc := strings.Index(s, `"time_complexity"`)
	ps := strings.Index(s, `"problem_solving"`)
	star := strings.Index(s, `"star_structure"`)
	if !(tc < ps && ps < star) {
		t.Fatalf("aggregates out of insertion order: %s", s)
	}

	var decoded domain.WeaknessProfile
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Aggregates.Skills(), profile.Aggregates.Skills()) {
		t.Fatalf("decoded order %v, want %v", decoded.Aggregates.Skills(), profile.Aggregates.Skills())
	}
}
