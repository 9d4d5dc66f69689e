package service

import (
	"errors"
	"testing"

	"interview-coach/internal/domain"
)

func TestCleanStoredJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"\uFEFF  {\"a\":1}  ":     `{"a":1}`,
		"   ":                     "",
	}
	for in, want := range cases {
		if got := cleanStoredJSON(in); got != want {
			t.Fatalf("cleanStoredJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`perfil: {"a":{"b":"}"}} fin`, `{"a":{"b":"}"}}`},
		{`{"a":"\"{"} {"b":2}`, `{"a":"\"{"}`},
		{`sin objeto`, ``},
		{`{"abierto":`, ``},
		{`} suelto {"a":1} }`, `{"a":1}`},
		{`{"a":{"b":1}`, ``},
	}
	for _, tc := range cases {
		if got := extractFirstJSONObject(tc.in); got != tc.want {
			t.Fatalf("extractFirstJSONObject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeProfile(t *testing.T) {
	valid := `{"userName":"ana","aggregates":{"reflection":{"weightedScore":5.5,"confidence":0.25,"observationCount":1,"recentScores":[7]},"specificity":{"weightedScore":4.5,"confidence":0.25,"observationCount":1,"recentScores":[3]}},"weakest":["specificity"],"strongest":["reflection"],"sessionCount":1,"lastUpdated":1700000000000}`

	profile, err := decodeProfile("```json\n" + valid + "\n```")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.UserName != "ana" || profile.SessionCount != 1 || profile.LastUpdated != 1700000000000 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if skills := profile.Aggregates.Skills(); len(skills) != 2 || skills[0] != domain.SkillReflection {
		t.Fatalf("unexpected aggregate order %v", skills)
	}

	malformed := []string{
		"",
		"null",
		"[1,2]",
		`{"userName":"ana","sessionCount":1}`,
		`{"userName":"ana","aggregates":[],"sessionCount":1}`,
		`{"userName":"ana","aggregates":{"reflection":"x"},"sessionCount":1}`,
		`{"userName":"ana","aggregates":{},"sessionCount":"uno"}`,
	}
	for _, raw := range malformed {
		if _, err := decodeProfile(raw); !errors.Is(err, errMalformedContent) {
			t.Fatalf("decodeProfile(%q): expected malformed error, got %v", raw, err)
		}
	}
}

func TestDecodeCategoryRecord(t *testing.T) {
	rec, err := decodeCategoryRecord(`{"category":"trees","score":8.5,"completed":true,"interviewNumber":3,"timestamp":1700000000000,"improvementDelta":1.5}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Category != domain.CategoryTrees || rec.Score != 8.5 || rec.ImprovementDelta == nil || *rec.ImprovementDelta != 1.5 {
		t.Fatalf("unexpected record %+v", rec)
	}

	for _, raw := range []string{`{"score":8}`, `{"category":"trees"}`, `{"category":"trees","score":"8"}`} {
		if _, err := decodeCategoryRecord(raw); !errors.Is(err, errMalformedContent) {
			t.Fatalf("decodeCategoryRecord(%q): expected malformed error, got %v", raw, err)
		}
	}
}

func TestDecodeSessionReport(t *testing.T) {
	report, err := decodeSessionReport(`texto previo {"sessionId":"s1","overallScore":7,"skillScores":[{"skill":"ownership","score":7}],"createdAt":5}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.SessionID != "s1" || len(report.SkillScores) != 1 || report.CreatedAt != 5 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := decodeSessionReport(`{"overallScore":7}`); !errors.Is(err, errMalformedContent) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
