package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/domain"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ParseResponse extracts prose and the structured metadata block from a
// raw generation response. Three ordered attempts, first match wins:
//
//  1. Strict: a ```json fenced block parses as the metadata object;
//     everything outside the block is prose.
//  2. Loose: the span from the first '{' to the last '}' parses as the
//     metadata object; the text before it is prose.
//  3. None: the whole response is prose with empty metadata fields.
//
// Parsing never fails the rewrite; a malformed block only narrows the
// returned metadata. The externally gathered citations are appended to
// whatever citations the block itself carried, in every branch.
func ParseResponse(response string, citations []domain.Citation) *domain.RewriteResult {
	if match := fencedJSONPattern.FindStringSubmatch(response); match != nil {
		if meta := unmarshalMetadata(match[1]); meta != nil {
			meta.Citations = append(meta.Citations, citations...)
			prose := strings.TrimSpace(fencedJSONPattern.ReplaceAllString(response, ""))
			return &domain.RewriteResult{Text: prose, Metadata: meta, ParseMode: domain.ParseModeStrict}
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end != -1 && start < end {
		if meta := unmarshalMetadata(response[start : end+1]); meta != nil {
			meta.Citations = append(meta.Citations, citations...)
			prose := strings.TrimSpace(response[:start])
			return &domain.RewriteResult{Text: prose, Metadata: meta, ParseMode: domain.ParseModeLoose}
		}
	}

	meta := domain.EmptyRewriteMetadata()
	meta.Citations = append(meta.Citations, citations...)
	return &domain.RewriteResult{Text: response, Metadata: meta, ParseMode: domain.ParseModeNone}
}

// unmarshalMetadata parses a candidate JSON object, returning nil when
// it is not a usable metadata block.
func unmarshalMetadata(candidate string) *domain.RewriteMetadata {
	var meta domain.RewriteMetadata
	if err := json.Unmarshal([]byte(candidate), &meta); err != nil {
		return nil
	}
	if meta.Headings == nil {
		meta.Headings = []string{}
	}
	if meta.Claims == nil {
		meta.Claims = []string{}
	}
	if meta.Numbers == nil {
		meta.Numbers = []string{}
	}
	if meta.Warnings == nil {
		meta.Warnings = []string{}
	}
	if meta.Citations == nil {
		meta.Citations = []domain.Citation{}
	}
	return &meta
}
