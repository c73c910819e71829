package service

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// QACheck is the outcome of one quality gate over rewritten text
type QACheck struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

var numberPattern = regexp.MustCompile(`\b\d+[.,]?\d*%?`)

// QARunner runs the post-rewrite quality gates: number extraction,
// banned phrases, mandatory disclaimer, and SKU fact mapping against
// the product master CSV.
type QARunner struct {
	tone       *ToneConfig
	productCSV string
}

func NewQARunner(tone *ToneConfig, productCSV string) *QARunner {
	return &QARunner{tone: tone, productCSV: productCSV}
}

// Run executes all checks; individual checks report failure through
// their OK flag, they do not abort the run.
func (q *QARunner) Run(text, lang string) []QACheck {
	checks := []QACheck{
		NumbersConsistencyCheck(text),
		BannedPhrasesCheck(text, q.tone.Claims.ProhibitedKeywords),
	}

	if disclaimer, err := Disclaimer(q.tone, DisclaimerClassCosmetics, lang); err == nil {
		checks = append(checks, RequireDisclaimerCheck(text, disclaimer))
	} else {
		checks = append(checks, QACheck{ID: "mandatory_disclaimer", OK: false, Detail: err.Error()})
	}

	if q.productCSV != "" {
		checks = append(checks, q.factMappingCheck(text))
	}

	return checks
}

// NumbersConsistencyCheck surfaces every number in the text for review
func NumbersConsistencyCheck(text string) QACheck {
	nums := numberPattern.FindAllString(text, -1)
	return QACheck{
		ID:     "numbers_consistency",
		OK:     true,
		Detail: fmt.Sprintf("found_numbers=%v", nums),
	}
}

// BannedPhrasesCheck fails when any prohibited keyword appears
func BannedPhrasesCheck(text string, banned []string) QACheck {
	lower := strings.ToLower(text)
	for _, phrase := range banned {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return QACheck{ID: "banned_claims", OK: false, Detail: "hit=" + phrase}
		}
	}
	return QACheck{ID: "banned_claims", OK: true, Detail: "hit=none"}
}

// RequireDisclaimerCheck fails when the mandatory disclaimer is absent
func RequireDisclaimerCheck(text, disclaimer string) QACheck {
	ok := strings.Contains(strings.ToLower(text), strings.ToLower(disclaimer))
	detail := "missing"
	if ok {
		detail = "present"
	}
	return QACheck{ID: "mandatory_disclaimer", OK: ok, Detail: detail}
}

// factMappingCheck lists the catalog SKUs mentioned in the text
func (q *QARunner) factMappingCheck(text string) QACheck {
	f, err := os.Open(q.productCSV)
	if err != nil {
		return QACheck{ID: "sku_cnpn_mapping", OK: false, Detail: "error:" + err.Error()}
	}
	defer f.Close()

	rows, err := readCSVRows(f)
	if err != nil {
		return QACheck{ID: "sku_cnpn_mapping", OK: false, Detail: "error:" + err.Error()}
	}

	var hits []string
	for _, row := range rows {
		sku := row[columnSKU]
		if sku != "" && strings.Contains(text, sku) {
			hits = append(hits, sku)
		}
	}

	return QACheck{ID: "sku_cnpn_mapping", OK: true, Detail: fmt.Sprintf("skus_mentioned=%v", hits)}
}
