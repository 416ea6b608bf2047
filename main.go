package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/app"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/database"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/workflow"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")

	// логгер до конфигурации, чтобы было куда писать ошибку загрузки
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	command := "serve"
	var args []string
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	switch command {
	case "serve":
		runServer(cfg, log)
	case "migrate":
		direction := "up"
		if len(args) > 0 {
			direction = args[0]
		}
		runMigrations(cfg, log, direction)
	case "submit", "check":
		os.Exit(runFlow(cfg, log, models.FlowKind(command), args))
	case "list", "get", "health":
		os.Exit(runQuery(cfg, log, command, args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: similarity-client [serve|submit|check|list|get|health|migrate up|down]\n", command)
		os.Exit(2)
	}
}

func runServer(cfg *config.Config, log zerolog.Logger) {
	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	application.Start(ctx)

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	log.Info().
		Str("address", cfg.Server.Address).
		Str("detector", cfg.API.BaseURL).
		Msg("Similarity client started")

	<-ctx.Done()
	log.Info().Msg("Shutting down similarity client...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}

	log.Info().Msg("Similarity client stopped")
}

func runMigrations(cfg *config.Config, log zerolog.Logger, direction string) {
	migrator, err := database.NewMigrator(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}

	switch direction {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	default:
		log.Fatal().Msg("Invalid migration direction. Use 'up' or 'down'")
	}
}

// runFlow одна попытка отправки или проверки через тот же контроллер, что и у HTTP сессий
func runFlow(cfg *config.Config, log zerolog.Logger, kind models.FlowKind, args []string) int {
	fs := flag.NewFlagSet(kind.String(), flag.ContinueOnError)
	studentID := fs.String("student", "", "student id (submit only)")
	questionID := fs.String("question", "", "question id")
	file := fs.String("file", "", "source file, '-' reads stdin")
	code := fs.String("code", "", "source code, overrides -file")
	lang := fs.String("language", "", "javascript|python|java|cpp|other, empty means auto-detect")
	threshold := fs.String("threshold", "", "similarity threshold (check only)")
	maxResults := fs.String("max-results", "", "max results (check only)")
	apiKey := fs.String("api-key", "", "OpenAI API key, stored for later runs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	source := *code
	if source == "" && *file != "" {
		data, err := readSource(*file)
		if err != nil {
			log.Error().Err(err).Str("file", *file).Msg("Failed to read source")
			return 1
		}
		source = string(data)
	}

	gw, store, err := app.NewGateway(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create gateway")
		return 1
	}

	opts := []workflow.Option{workflow.WithCheckDefaults(cfg.Check.SimilarityThreshold, cfg.Check.MaxResults)}
	controller, err := workflow.NewController(kind, gw, store, log, opts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create controller")
		return 1
	}
	defer controller.Close()

	if *apiKey != "" {
		if err := controller.SetCredential(*apiKey); err != nil {
			log.Error().Err(err).Msg("Failed to store credential")
			return 1
		}
	}

	fields := map[string]string{
		models.FieldQuestionID: *questionID,
		models.FieldCode:       source,
		models.FieldLanguage:   *lang,
	}
	if kind == models.FlowSubmit {
		fields[models.FieldStudentID] = *studentID
	} else {
		if *threshold != "" {
			fields[models.FieldSimilarityThreshold] = *threshold
		}
		if *maxResults != "" {
			fields[models.FieldMaxResults] = *maxResults
		}
	}
	if err := controller.SetFields(fields); err != nil {
		log.Error().Err(err).Msg("Invalid input")
		return 2
	}

	state, err := controller.Submit(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Submit failed")
		return 1
	}

	printJSON(state)
	if state.Phase != workflow.PhaseSucceeded {
		return 1
	}
	return 0
}

func runQuery(cfg *config.Config, log zerolog.Logger, command string, args []string) int {
	gw, _, err := app.NewGateway(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create gateway")
		return 1
	}

	ctx := context.Background()
	switch command {
	case "health":
		res := gw.Health(ctx)
		printJSON(res)
		if !res.Success {
			return 1
		}
	case "list", "get":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "usage: similarity-client %s <id>\n", command)
			return 2
		}
		if command == "list" {
			res := gw.ListByQuestion(ctx, args[0])
			printJSON(res)
			if !res.Success {
				return 1
			}
		} else {
			res := gw.GetByID(ctx, args[0])
			printJSON(res)
			if !res.Success {
				return 1
			}
		}
	}
	return 0
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return data, err
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}
