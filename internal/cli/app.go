package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/brandloom-ai/brandloom/internal/config"
	"github.com/brandloom-ai/brandloom/internal/database"
	"github.com/brandloom-ai/brandloom/internal/openai"
	"github.com/brandloom-ai/brandloom/internal/repository"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/brandloom-ai/brandloom/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app bundles the wiring shared by the commands: config, database pool,
// the OpenAI-compatible client, and the vector store built on both.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	client *openai.Client
	store  *repository.CollectionRepository
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{cfg: cfg, pool: pool}

	if cfg.HasOpenAI() {
		a.client = openai.NewClientWithConfig(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ChatModel:  cfg.ChatModel,
			MaxRetries: cfg.MaxRetries,
		})
		a.store = repository.NewCollectionRepository(pool, a.client)
	}

	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// knowledgeSource prefers S3-compatible storage when configured and
// falls back to the local knowledge directory.
func (a *app) knowledgeSource(ctx context.Context) (service.KnowledgeSource, error) {
	if !a.cfg.HasS3() {
		return service.NewDirSource(a.cfg.KnowledgeDir), nil
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        a.cfg.S3Endpoint,
		Region:          a.cfg.S3Region,
		AccessKeyID:     a.cfg.S3AccessKey,
		SecretAccessKey: a.cfg.S3SecretKey,
		Bucket:          a.cfg.S3Bucket,
		Prefix:          a.cfg.S3Prefix,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("reading knowledge base from s3://%s/%s", a.cfg.S3Bucket, a.cfg.S3Prefix)
	return s3Client, nil
}

// rewriter builds the full rewrite pipeline from config. The retriever
// is wired only when an embedding-backed store exists.
func (a *app) rewriter() (*service.Rewriter, error) {
	if a.client == nil {
		return nil, fmt.Errorf("rewrite requires BRANDLOOM_OPENAI_API_KEY")
	}

	tone, err := service.LoadToneConfig(a.cfg.TonePath)
	if err != nil {
		return nil, err
	}
	prompts, err := service.LoadPromptConfig(a.cfg.PromptsPath)
	if err != nil {
		return nil, err
	}

	rwCfg := service.RewriterConfig{
		Generator:  a.client,
		Tone:       tone,
		Prompts:    prompts,
		Model:      a.cfg.ChatModel,
		RAGEnabled: a.cfg.RAGEnabled,
	}
	if a.store != nil {
		rwCfg.Retriever = service.NewRetriever(a.store)
	}

	return service.NewRewriter(rwCfg), nil
}
