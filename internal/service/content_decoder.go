package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"interview-coach/internal/domain"
)

var errMalformedContent = errors.New("malformed content")

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanStoredJSON quita BOM y fences ```json ... ``` que a veces quedan en contenido guardado.
func cleanStoredJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado del texto.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}
	return ""
}

// validObject limpia el contenido y exige un objeto JSON valido con los campos pedidos.
func validObject(raw string, required ...string) (string, error) {
	s := cleanStoredJSON(raw)
	if !gjson.Valid(s) {
		s = extractFirstJSONObject(s)
	}
	if s == "" || !gjson.Valid(s) {
		return "", fmt.Errorf("%w: invalid json", errMalformedContent)
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return "", fmt.Errorf("%w: expected object", errMalformedContent)
	}
	for _, field := range required {
		if !res.Get(field).Exists() {
			return "", fmt.Errorf("%w: missing %s", errMalformedContent, field)
		}
	}
	return s, nil
}

func decodeProfile(raw string) (domain.WeaknessProfile, error) {
	s, err := validObject(raw, "userName", "aggregates", "sessionCount")
	if err != nil {
		return domain.WeaknessProfile{}, err
	}
	if !gjson.Get(s, "aggregates").IsObject() {
		return domain.WeaknessProfile{}, fmt.Errorf("%w: aggregates is not an object", errMalformedContent)
	}
	var profile domain.WeaknessProfile
	if err := json.Unmarshal([]byte(s), &profile); err != nil {
		return domain.WeaknessProfile{}, fmt.Errorf("%w: %v", errMalformedContent, err)
	}
	return profile, nil
}

func decodeCategoryRecord(raw string) (domain.CategoryRecord, error) {
	s, err := validObject(raw, "category", "score")
	if err != nil {
		return domain.CategoryRecord{}, err
	}
	if gjson.Get(s, "score").Type != gjson.Number {
		return domain.CategoryRecord{}, fmt.Errorf("%w: score is not a number", errMalformedContent)
	}
	var rec domain.CategoryRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return domain.CategoryRecord{}, fmt.Errorf("%w: %v", errMalformedContent, err)
	}
	return rec, nil
}

func decodeSessionReport(raw string) (domain.SessionReport, error) {
	s, err := validObject(raw, "sessionId", "overallScore")
	if err != nil {
		return domain.SessionReport{}, err
	}
	var report domain.SessionReport
	if err := json.Unmarshal([]byte(s), &report); err != nil {
		return domain.SessionReport{}, fmt.Errorf("%w: %v", errMalformedContent, err)
	}
	return report, nil
}
