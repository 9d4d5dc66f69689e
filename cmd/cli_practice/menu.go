package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"interview-coach/internal/domain"
	"interview-coach/internal/service"
)

// runMenu es el loop interactivo de practica sobre la terminal.
func runMenu(ctx context.Context, reader *bufio.Reader, svc *service.InterviewService, userName string) error {
	for {
		fmt.Printf("\n--- Practica de entrevistas: %s ---\n", userName)
		fmt.Println("[1] Nueva sesion")
		fmt.Println("[2] Ver progreso")
		fmt.Println("[3] Ver perfil y plan de foco")
		fmt.Println("[4] Borrar mis datos")
		fmt.Println("[5] Salir")

		switch prompt(reader, "Opcion: ") {
		case "1":
			if err := runSession(ctx, reader, svc, userName); err != nil {
				fmt.Printf("error en la sesion: %v\n", err)
			}
		case "2":
			printProgress(ctx, svc, userName)
		case "3":
			printProfile(ctx, svc, userName)
		case "4":
			if strings.EqualFold(prompt(reader, "Seguro? [s/N]: "), "s") {
				resetUser(ctx, svc, userName)
			}
		case "5", "":
			return nil
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func resetUser(ctx context.Context, svc *service.InterviewService, userName string) {
	deleted, err := svc.ResetUser(ctx, userName)
	if err != nil {
		fmt.Printf("error al borrar: %v\n", err)
		return
	}
	fmt.Printf("Datos borrados (%d entradas del store).\n", deleted)
}

func runSession(ctx context.Context, reader *bufio.Reader, svc *service.InterviewService, userName string) error {
	session, err := svc.StartSession(ctx, service.StartSessionInput{
		UserName:      userName,
		Role:          prompt(reader, "Rol: "),
		Company:       prompt(reader, "Empresa (opcional): "),
		InterviewType: prompt(reader, "Tipo [swe/consulting/product/behavioral/generic]: "),
		Difficulty:    prompt(reader, "Dificultad [easy/medium/hard]: "),
	})
	if err != nil {
		return err
	}

	cfg := session.Config
	fmt.Printf("\nSesion %s\n", session.ID)
	fmt.Printf("Categoria: %s", cfg.QuestionCategory)
	if cfg.IsRetry {
		fmt.Print(" (reintento)")
	}
	fmt.Printf("\nDificultad: %s\n", cfg.Difficulty)
	if cfg.FocusPlan != nil && len(cfg.FocusPlan.Weaknesses) > 0 {
		fmt.Printf("Foco en: %s\n", joinLabels(cfg.FocusPlan.Weaknesses))
	}
	fmt.Printf("Fases: %s\n", strings.Join(session.Phases, ", "))

	if strings.EqualFold(prompt(reader, "Terminar antes de tiempo? [s/N]: "), "s") {
		_, err := svc.EndSession(ctx, service.EndSessionInput{SessionID: session.ID, EarlyExit: true})
		if err == nil {
			fmt.Println("Sesion cerrada sin evaluar.")
		}
		return err
	}

	var scores domain.SkillScores
	for _, skill := range session.Skills {
		score, ok := readScore(reader, fmt.Sprintf("Puntaje %s (1-10, vacio para omitir): ", skill.Label()))
		if !ok {
			continue
		}
		scores = append(scores, domain.SkillScore{Skill: skill, Score: score})
	}
	overall, ok := readScore(reader, "Puntaje general (1-10): ")
	for !ok {
		overall, ok = readScore(reader, "Puntaje general (1-10): ")
	}

	report, err := svc.EndSession(ctx, service.EndSessionInput{
		SessionID:    session.ID,
		OverallScore: overall,
		SkillScores:  scores,
		Strengths:    splitList(prompt(reader, "Fortalezas (separadas por ;): ")),
		Weaknesses:   splitList(prompt(reader, "Debilidades (separadas por ;): ")),
		Mistakes:     splitList(prompt(reader, "Errores (separados por ;): ")),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Informe guardado: %.1f en %s\n", report.OverallScore, report.QuestionCategory)
	return nil
}

func printProgress(ctx context.Context, svc *service.InterviewService, userName string) {
	view, err := svc.Progress(ctx, userName)
	if err != nil {
		fmt.Printf("error al leer progreso: %v\n", err)
		return
	}
	fmt.Printf("\nEntrevistas: %d  Promedio: %.1f\n", view.TotalInterviews, view.OverallAvg)
	for _, s := range view.CategoryStats {
		status := "en progreso"
		if s.Completed {
			status = "superada"
		}
		fmt.Printf("  %-26s ultimo %.1f  (%s)\n", s.Category, s.LatestScore, status)
	}
	if n := len(view.CategoryHistory); n > 0 {
		last := view.CategoryHistory[n-1]
		fmt.Printf("Ultima entrevista: #%d %s el %s\n", last.InterviewNumber, last.Category, last.Time().Format("2006-01-02"))
	}
	if view.MostImproved != nil && view.MostImprovedDelta != nil {
		fmt.Printf("Mayor mejora: %s (%+.1f)\n", *view.MostImproved, *view.MostImprovedDelta)
	}
	for _, m := range view.RepeatedMistakes {
		fmt.Printf("Error repetido: %s x%d\n", m.Mistake, m.Count)
	}
}

func printProfile(ctx context.Context, svc *service.InterviewService, userName string) {
	plan, err := svc.FocusPlan(ctx, userName)
	if err != nil {
		fmt.Printf("error al leer plan: %v\n", err)
		return
	}
	if profile, err := svc.Profile(ctx, userName); err == nil {
		fmt.Printf("\nSesiones evaluadas: %d (actualizado %s)\n", profile.SessionCount, profile.LastUpdatedTime().Format("2006-01-02 15:04"))
		for _, e := range profile.Aggregates {
			fmt.Printf("  %-26s %.1f (confianza %.2f, n=%d)\n",
				e.Skill.Label(), e.Aggregate.WeightedScore, e.Aggregate.Confidence, e.Aggregate.ObservationCount)
		}
	} else {
		fmt.Println("\nTodavia no hay perfil.")
	}
	fmt.Printf("Debilidades: %s\n", joinLabels(plan.Weaknesses))
	fmt.Printf("Fortalezas: %s\n", joinLabels(plan.Strengths))
	fmt.Printf("Dificultad sugerida: %s\n", plan.Difficulty)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readScore(reader *bufio.Reader, label string) (float64, bool) {
	raw := prompt(reader, label)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 1 || v > 10 {
		fmt.Println("Puntaje invalido.")
		return 0, false
	}
	return v, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinLabels(skills []domain.Skill) string {
	if len(skills) == 0 {
		return "-"
	}
	labels := make([]string, len(skills))
	for i, s := range skills {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}
