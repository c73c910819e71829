package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	// DisclaimerClassCosmetics selects the cosmetics disclaimer set.
	DisclaimerClassCosmetics = "cosmetics"
	// disclaimerFallbackLang is the one allowed fallback in prompt
	// construction: a missing 2-letter disclaimer key falls back to
	// English before failing.
	disclaimerFallbackLang = "en"

	ragQueryMaxChars    = 1000
	factSnippetMaxChars = 200
	ragProductFacts     = 3
	ragKnowledgeItems   = 2
)

// VoiceConfig is a per-language brand voice entry
type VoiceConfig struct {
	Style string   `yaml:"style"`
	Do    []string `yaml:"do"`
	Dont  []string `yaml:"dont"`
}

// ToneConfig is the brand tone configuration loaded from YAML
type ToneConfig struct {
	Brand struct {
		Name  string                 `yaml:"name"`
		Voice map[string]VoiceConfig `yaml:"voice"`
	} `yaml:"brand"`
	Claims struct {
		ProhibitedKeywords   []string                     `yaml:"prohibited_keywords"`
		MandatoryDisclaimers map[string]map[string]string `yaml:"mandatory_disclaimers"`
	} `yaml:"claims"`
}

// PromptConfig holds optional prompt templates with {slot} placeholders
type PromptConfig struct {
	SystemPrompt      string `yaml:"system_prompt"`
	UserPromptRewrite string `yaml:"user_prompt_rewrite"`
}

// LoadToneConfig reads a tone YAML file
func LoadToneConfig(path string) (*ToneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, "failed to read tone config", err)
	}
	var cfg ToneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, "failed to parse tone config", err)
	}
	return &cfg, nil
}

// LoadPromptConfig reads a prompt-template YAML file. A missing file is
// not an error: the rewriter falls back to the basic system prompt.
func LoadPromptConfig(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PromptConfig{}, nil
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, "failed to read prompt config", err)
	}
	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, "failed to parse prompt config", err)
	}
	return &cfg, nil
}

// GenerationClient issues one chat-style generation call. Retry and
// backoff behavior lives behind this interface.
type GenerationClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)
}

// FactRetriever supplies retrieval results for RAG-augmented rewrites
type FactRetriever interface {
	RetrieveAll(ctx context.Context, query string, nProductFacts, nKnowledge int) (*RetrievalBundle, error)
}

// Rewriter orchestrates a single rewrite call: prompt construction,
// fact retrieval, the generation request, and response parsing. It owns
// no state beyond its collaborators; intermediate prompt state is
// discarded after each call.
type Rewriter struct {
	generator  GenerationClient
	retriever  FactRetriever
	tone       *ToneConfig
	prompts    *PromptConfig
	model      string
	ragEnabled bool
}

// RewriterConfig wires a Rewriter's collaborators and policy flags
type RewriterConfig struct {
	Generator  GenerationClient
	Retriever  FactRetriever
	Tone       *ToneConfig
	Prompts    *PromptConfig
	Model      string
	RAGEnabled bool
}

func NewRewriter(cfg RewriterConfig) *Rewriter {
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = &PromptConfig{}
	}
	return &Rewriter{
		generator:  cfg.Generator,
		retriever:  cfg.Retriever,
		tone:       cfg.Tone,
		prompts:    prompts,
		model:      cfg.Model,
		ragEnabled: cfg.RAGEnabled,
	}
}

// BuildSystemPrompt renders the brand voice for a language into a
// system instruction. A missing voice language is a CONFIG_ERROR; only
// the disclaimer lookup may fall back to English.
func BuildSystemPrompt(tone *ToneConfig, lang string) (string, error) {
	voice, ok := tone.Brand.Voice[strings.ToLower(lang)]
	if !ok {
		return "", domain.ErrVoiceLanguageMissing
	}

	disclaimer, err := Disclaimer(tone, DisclaimerClassCosmetics, lang)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a senior editorial AI for %s.
Write in %s. Style: %s.
DO: %s. DON'T: %s.
Always include this disclaimer at the end: %s.
Keep claims cosmetic, avoid medical promises. Standardize numbers/dates.
`,
		tone.Brand.Name,
		lang,
		voice.Style,
		strings.Join(voice.Do, ", "),
		strings.Join(voice.Dont, ", "),
		disclaimer,
	), nil
}

// Disclaimer resolves the mandatory disclaimer for a product class and
// language, falling back to English when the 2-letter code is absent.
func Disclaimer(tone *ToneConfig, class, lang string) (string, error) {
	byLang, ok := tone.Claims.MandatoryDisclaimers[class]
	if !ok {
		return "", domain.NewDomainError(domain.ErrCodeConfig, "no disclaimers configured for class "+class)
	}

	key := langKey(lang)
	if text, ok := byLang[key]; ok {
		return text, nil
	}
	if text, ok := byLang[disclaimerFallbackLang]; ok {
		return text, nil
	}
	return "", domain.ErrDisclaimerMissing
}

// Rewrite builds the system prompt and sends the raw source text as the
// user message, returning the service's response verbatim.
func (rw *Rewriter) Rewrite(ctx context.Context, text, lang string) (string, error) {
	system, err := BuildSystemPrompt(rw.tone, lang)
	if err != nil {
		return "", err
	}
	return rw.generator.Generate(ctx, system, text, rw.model)
}

// RewriteInput parameterizes a RAG-augmented rewrite
type RewriteInput struct {
	Text         string
	Lang         string
	DocumentType string
	UseRAG       bool
}

// RewriteWithRAG retrieves supporting facts, builds the prompt pair,
// calls the generation service, and parses the prose + metadata
// response. Retrieval failures degrade to a rewrite without facts;
// generation failures propagate.
func (rw *Rewriter) RewriteWithRAG(ctx context.Context, input RewriteInput) (*domain.RewriteResult, error) {
	docType := input.DocumentType
	if docType == "" {
		docType = "Document"
	}

	var factsText, knowledgeText string
	var citations []domain.Citation

	if input.UseRAG && rw.ragEnabled && rw.retriever != nil {
		facts, knowledge, cits, err := rw.gatherFacts(ctx, input.Text)
		if err != nil {
			log.Printf("RAG retrieval failed: %v, continuing without facts", err)
		} else {
			factsText, knowledgeText, citations = facts, knowledge, cits
		}
	}

	systemPrompt, userPrompt, err := rw.buildPrompts(input.Text, input.Lang, docType, factsText, knowledgeText)
	if err != nil {
		return nil, err
	}

	response, err := rw.generator.Generate(ctx, systemPrompt, userPrompt, rw.model)
	if err != nil {
		return nil, err
	}

	return ParseResponse(response, citations), nil
}

// gatherFacts queries both collections using the head of the source
// text and renders the snippets injected into the prompt.
func (rw *Rewriter) gatherFacts(ctx context.Context, text string) (string, string, []domain.Citation, error) {
	query := truncate(text, ragQueryMaxChars)

	bundle, err := rw.retriever.RetrieveAll(ctx, query, ragProductFacts, ragKnowledgeItems)
	if err != nil {
		return "", "", nil, err
	}

	var citations []domain.Citation

	factLines := make([]string, 0, len(bundle.ProductFacts))
	for _, fact := range bundle.ProductFacts {
		factLines = append(factLines, "- "+truncate(fact.Text, factSnippetMaxChars))
		citations = append(citations, domain.Citation{Source: domain.SourceProductMaster, Reference: fact.Citation})
	}

	knowledgeLines := make([]string, 0, len(bundle.Knowledge))
	for _, kb := range bundle.Knowledge {
		knowledgeLines = append(knowledgeLines, "- "+truncate(kb.Text, factSnippetMaxChars))
		citations = append(citations, domain.Citation{Source: domain.SourceKnowledgeBase, Reference: kb.Citation})
	}

	return strings.Join(factLines, "\n"), strings.Join(knowledgeLines, "\n"), citations, nil
}

// buildPrompts prefers the configured templates and falls back to the
// basic system prompt when none are set.
func (rw *Rewriter) buildPrompts(text, lang, docType, factsText, knowledgeText string) (string, string, error) {
	if rw.prompts.UserPromptRewrite == "" {
		system, err := BuildSystemPrompt(rw.tone, lang)
		if err != nil {
			return "", "", err
		}
		return system, "Rewrite this text:\n\n" + text, nil
	}

	voice, ok := rw.tone.Brand.Voice[strings.ToLower(lang)]
	if !ok {
		return "", "", domain.ErrVoiceLanguageMissing
	}

	if factsText == "" {
		factsText = "No specific product facts retrieved."
	}
	if knowledgeText == "" {
		knowledgeText = "No additional knowledge available."
	}

	userPrompt := substituteSlots(rw.prompts.UserPromptRewrite, map[string]string{
		"language":      lang,
		"document_type": docType,
		"tone":          voice.Style,
		"facts":         factsText,
		"knowledge":     knowledgeText,
		"source_text":   text,
	})
	systemPrompt := substituteSlots(rw.prompts.SystemPrompt, map[string]string{
		"brand":         rw.tone.Brand.Name,
		"document_type": docType,
		"language":      lang,
	})

	return systemPrompt, userPrompt, nil
}

// substituteSlots fills {name} placeholders; the slot syntax matches
// the prompt files the pipeline ships.
func substituteSlots(template string, slots map[string]string) string {
	pairs := make([]string, 0, len(slots)*2)
	for name, value := range slots {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// truncate caps s at max characters, not bytes, so multibyte input
// (Arabic and German text is routine here) never ends mid-rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// langKey reduces a language tag to its lowercase 2-letter code
func langKey(lang string) string {
	key := strings.ToLower(lang)
	if len(key) > 2 {
		key = key[:2]
	}
	return key
}
