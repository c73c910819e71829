package service

import (
	"testing"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_StrictFencedBlock(t *testing.T) {
	response := "Some text\n```json\n{\"headings\":[\"A\"]}\n```"
	cits := []domain.Citation{{Source: domain.SourceProductMaster, Reference: "HM-001 - Argan Shampoo"}}

	result := ParseResponse(response, cits)

	assert.Equal(t, domain.ParseModeStrict, result.ParseMode)
	assert.Equal(t, "Some text", result.Text)
	assert.Equal(t, []string{"A"}, result.Metadata.Headings)
	assert.Equal(t, cits, result.Metadata.Citations)
}

func TestParseResponse_StrictAppendsToExistingCitations(t *testing.T) {
	response := "Prose\n```json\n{\"citations\":[{\"source\":\"Knowledge_Base\",\"reference\":\"care.md\"}]}\n```"
	external := []domain.Citation{{Source: domain.SourceProductMaster, Reference: "HM-001 - Argan Shampoo"}}

	result := ParseResponse(response, external)

	require.Len(t, result.Metadata.Citations, 2)
	assert.Equal(t, "care.md", result.Metadata.Citations[0].Reference)
	assert.Equal(t, "HM-001 - Argan Shampoo", result.Metadata.Citations[1].Reference)
}

func TestParseResponse_LooseBraceSpan(t *testing.T) {
	response := "Rewritten intro paragraph.\n{\"claims\": [\"softens hair\"], \"warnings\": []}"

	result := ParseResponse(response, nil)

	assert.Equal(t, domain.ParseModeLoose, result.ParseMode)
	assert.Equal(t, "Rewritten intro paragraph.", result.Text)
	assert.Equal(t, []string{"softens hair"}, result.Metadata.Claims)
	assert.Empty(t, result.Metadata.Citations)
}

func TestParseResponse_NoStructuredData(t *testing.T) {
	response := "Just plain rewritten prose with no metadata at all."
	cits := []domain.Citation{{Source: domain.SourceKnowledgeBase, Reference: "care.md"}}

	result := ParseResponse(response, cits)

	assert.Equal(t, domain.ParseModeNone, result.ParseMode)
	assert.Equal(t, response, result.Text)
	assert.Empty(t, result.Metadata.Headings)
	assert.Empty(t, result.Metadata.Claims)
	assert.Empty(t, result.Metadata.Numbers)
	assert.Empty(t, result.Metadata.Warnings)
	assert.Equal(t, cits, result.Metadata.Citations)
}

func TestParseResponse_MalformedFencedFallsThrough(t *testing.T) {
	// The fenced block is broken JSON but a later brace span parses.
	response := "Intro text {\"headings\": [\"Care\"], \"claims\": []}"

	result := ParseResponse(response, nil)

	assert.Equal(t, domain.ParseModeLoose, result.ParseMode)
	assert.Equal(t, "Intro text", result.Text)
	assert.Equal(t, []string{"Care"}, result.Metadata.Headings)
}

func TestParseResponse_MalformedEverythingDegradesToProse(t *testing.T) {
	response := "Unbalanced { not json at all"

	result := ParseResponse(response, nil)

	assert.Equal(t, domain.ParseModeNone, result.ParseMode)
	assert.Equal(t, response, result.Text)
}

func TestParseResponse_EmptyFieldsAreNonNil(t *testing.T) {
	result := ParseResponse("```json\n{}\n```", nil)

	assert.Equal(t, domain.ParseModeStrict, result.ParseMode)
	assert.NotNil(t, result.Metadata.Headings)
	assert.NotNil(t, result.Metadata.Citations)
}
