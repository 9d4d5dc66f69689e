package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-coach/internal/config"
	"interview-coach/internal/db"
	"interview-coach/internal/repository"
	"interview-coach/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "cli_practice",
	Short: "Practica de entrevistas en la terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		userName, _ := cmd.Flags().GetString("user")
		if strings.TrimSpace(userName) == "" {
			userName = prompt(reader, "Nombre de usuario: ")
		}
		if userName == "" {
			return errors.New("el nombre de usuario es obligatorio")
		}
		return withService(cmd, func(ctx context.Context, svc *service.InterviewService) error {
			return runMenu(ctx, reader, svc, userName)
		})
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Muestra el progreso por categoria",
	RunE: func(cmd *cobra.Command, args []string) error {
		userName, err := requireUser(cmd)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.InterviewService) error {
			printProgress(ctx, svc, userName)
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Muestra el perfil de habilidades y el plan de foco",
	RunE: func(cmd *cobra.Command, args []string) error {
		userName, err := requireUser(cmd)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.InterviewService) error {
			printProfile(ctx, svc, userName)
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Borra historial, sesiones y perfil del usuario",
	RunE: func(cmd *cobra.Command, args []string) error {
		userName, err := requireUser(cmd)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.InterviewService) error {
			resetUser(ctx, svc, userName)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().String("user", "", "Nombre de usuario")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Semilla del selector de categorias (pisa RANDOM_SEED)")

	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func requireUser(cmd *cobra.Command) (string, error) {
	userName, _ := cmd.Flags().GetString("user")
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", errors.New("--user es obligatorio")
	}
	return userName, nil
}

// withService arma el servicio con los stores configurados y ejecuta fn.
// Sin DATABASE_URL todo vive en memoria durante la ejecucion.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.InterviewService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		cfg.RandomSeed = seed
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var memoryStore repository.MemoryStore = repository.NewInMemoryMemoryStore()
	var historyRepo repository.CategoryHistoryRepository = repository.NewMemoryCategoryHistory()
	var sessionRepo repository.SessionRepository = repository.NewMemorySessionRepository()
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		memoryStore = repository.NewPgMemoryStore(pool)
		historyRepo = repository.NewPgCategoryHistoryRepository(pool)
		sessionRepo = repository.NewPgSessionRepository(pool, logger)
	}

	selector := service.NewCategorySelector(service.NewRandSource(cfg.RandomSeed))
	svc := service.NewInterviewService(logger, memoryStore, historyRepo, sessionRepo, service.NewKeyedMutexLocker(), selector, cfg.StoreTimeout)
	return fn(ctx, svc)
}
