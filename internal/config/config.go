package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	MaxRetries    int    `envconfig:"MAX_RETRIES" default:"3"`

	RAGEnabled bool `envconfig:"RAG_ENABLED" default:"true"`

	TonePath         string `envconfig:"TONE_PATH" default:"configs/tone.yaml"`
	PromptsPath      string `envconfig:"PROMPTS_PATH" default:"configs/prompts.yaml"`
	GlossaryPath     string `envconfig:"GLOSSARY_PATH" default:"data/Glossary.csv"`
	ProductMasterCSV string `envconfig:"PRODUCT_MASTER_CSV" default:"data/Product_Master.csv"`
	KnowledgeDir     string `envconfig:"KNOWLEDGE_DIR" default:"data/knowledge_base"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"brandloom-knowledge"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"knowledge_base"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	APIToken  string `envconfig:"API_TOKEN"`
	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("BRANDLOOM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// HasS3 reports whether knowledge documents should be read from
// S3-compatible storage instead of the local knowledge directory.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
