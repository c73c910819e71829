package service

import (
	"log"
	"os"
	"regexp"
	"strings"
)

// Glossary applies mandatory term substitutions after rewriting, so
// terminology stays consistent per target language. Loaded from a CSV
// shaped Term,AR,EN,DE,...,Category.
type Glossary struct {
	terms  []glossaryTerm
	header []string
}

type glossaryTerm struct {
	source       string
	pattern      *regexp.Regexp
	translations map[string]string
}

// LoadGlossary reads a glossary CSV. A missing file yields an empty
// glossary: substitution is best-effort, never a pipeline failure.
func LoadGlossary(path string) (*Glossary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("glossary not found at %s, substitutions disabled", path)
			return &Glossary{}, nil
		}
		return nil, err
	}
	defer f.Close()

	rows, err := readCSVRows(f)
	if err != nil {
		return nil, err
	}

	g := &Glossary{}
	for _, row := range rows {
		source := strings.TrimSpace(row["Term"])
		if source == "" {
			continue
		}
		translations := make(map[string]string, len(row))
		for col, val := range row {
			if col == "Term" || col == "Category" {
				continue
			}
			translations[strings.ToUpper(col)] = strings.TrimSpace(val)
		}
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(source) + `\b`)
		if err != nil {
			continue
		}
		g.terms = append(g.terms, glossaryTerm{source: source, pattern: pattern, translations: translations})
	}

	return g, nil
}

// Apply replaces every glossary term with its translation for the
// target language, whole words only, case-insensitively. Identity rows
// and terms without a translation are skipped.
func (g *Glossary) Apply(text, lang string) string {
	langCol := strings.ToUpper(langKey(lang))

	replaced := 0
	for _, term := range g.terms {
		target, ok := term.translations[langCol]
		if !ok || target == "" || target == term.source {
			continue
		}

		next := term.pattern.ReplaceAllString(text, target)
		if next != text {
			replaced++
			text = next
		}
	}

	if replaced > 0 {
		log.Printf("glossary applied %d term replacements for %s", replaced, lang)
	}
	return text
}

// Len returns the number of loaded terms
func (g *Glossary) Len() int {
	return len(g.terms)
}
