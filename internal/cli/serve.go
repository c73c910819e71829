package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandloom-ai/brandloom/internal/api/handlers"
	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/server"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/brandloom-ai/brandloom/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the brandloom API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	log.Println("connected to database")

	if a.cfg.HasSentry() {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              a.cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            a.cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		a.cfg.Port = portFlag
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(a.cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	knowledge, err := a.knowledgeSource(ctx)
	if err != nil {
		return err
	}

	tone, err := service.LoadToneConfig(a.cfg.TonePath)
	if err != nil {
		return err
	}
	glossary, err := service.LoadGlossary(a.cfg.GlossaryPath)
	if err != nil {
		return err
	}
	qa := service.NewQARunner(tone, a.cfg.ProductMasterCSV)

	var indexSvc handlers.IndexService
	var counter handlers.CollectionCounter
	var searchSvc handlers.SearchService
	var rewriteSvc handlers.RewriteService
	var dense handlers.DenseDeduper

	if a.store != nil {
		indexSvc = service.NewIndexer(a.store)
		counter = a.store
		searchSvc = service.NewRetriever(a.store)
		dense = service.NewDenseReducer(a.client)
	} else {
		log.Println("no embedding provider configured, store-backed endpoints disabled")
		indexSvc = &noOpIndexService{}
		counter = &noOpCounter{}
		searchSvc = &noOpSearchService{}
	}

	if a.client != nil {
		rw, err := a.rewriter()
		if err != nil {
			return err
		}
		rewriteSvc = rw
	} else {
		rewriteSvc = &noOpRewriteService{}
	}

	router := server.NewRouter(server.RouterConfig{
		APIToken:       a.cfg.APIToken,
		IndexHandler:   handlers.NewIndexHandler(indexSvc, counter, a.cfg.ProductMasterCSV, knowledge),
		SearchHandler:  handlers.NewSearchHandler(searchSvc),
		RewriteHandler: handlers.NewRewriteHandler(rewriteSvc, glossary, qa),
		DedupeHandler:  handlers.NewDedupeHandler(dense, service.NewSparseReducer()),
	})

	srv := &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

var errNoEmbeddingProvider = domain.NewDomainError(domain.ErrCodeConfig, "not configured: BRANDLOOM_OPENAI_API_KEY required")

type noOpIndexService struct{}

func (s *noOpIndexService) IndexProductMaster(ctx context.Context, csvPath string) (int, error) {
	return 0, errNoEmbeddingProvider
}

func (s *noOpIndexService) IndexKnowledgeBase(ctx context.Context, source service.KnowledgeSource) (int, error) {
	return 0, errNoEmbeddingProvider
}

type noOpCounter struct{}

func (s *noOpCounter) Count(ctx context.Context, collection domain.Collection) (int, error) {
	return 0, errNoEmbeddingProvider
}

type noOpSearchService struct{}

func (s *noOpSearchService) RetrieveProductFacts(ctx context.Context, query string, n int, sku string) ([]domain.RetrievalResult, error) {
	return nil, errNoEmbeddingProvider
}

func (s *noOpSearchService) RetrieveKnowledge(ctx context.Context, query string, n int) ([]domain.RetrievalResult, error) {
	return nil, errNoEmbeddingProvider
}

type noOpRewriteService struct{}

func (s *noOpRewriteService) RewriteWithRAG(ctx context.Context, input service.RewriteInput) (*domain.RewriteResult, error) {
	return nil, errNoEmbeddingProvider
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
