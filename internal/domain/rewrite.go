package domain

// ParseMode tags which branch of the structured-output parser produced
// a RewriteMetadata.
type ParseMode string

const (
	// ParseModeStrict means a tagged ```json fenced block parsed cleanly.
	ParseModeStrict ParseMode = "strict"
	// ParseModeLoose means the brace-delimited span between the first '{'
	// and the last '}' parsed as the metadata object.
	ParseModeLoose ParseMode = "loose"
	// ParseModeNone means no structured block was found; the whole
	// response is prose and the metadata fields are empty.
	ParseModeNone ParseMode = "none"
)

// RewriteMetadata is the structured block embedded in a generation
// response, merged with the citations gathered during retrieval.
type RewriteMetadata struct {
	Headings  []string   `json:"headings"`
	Claims    []string   `json:"claims"`
	Numbers   []string   `json:"numbers"`
	Warnings  []string   `json:"warnings"`
	Citations []Citation `json:"citations"`
}

// EmptyRewriteMetadata returns a metadata object with empty (non-nil)
// fields, used when no structured block could be parsed.
func EmptyRewriteMetadata() *RewriteMetadata {
	return &RewriteMetadata{
		Headings:  []string{},
		Claims:    []string{},
		Numbers:   []string{},
		Warnings:  []string{},
		Citations: []Citation{},
	}
}

// RewriteResult is the parsed outcome of one rewrite call
type RewriteResult struct {
	Text      string           `json:"text"`
	Metadata  *RewriteMetadata `json:"metadata"`
	ParseMode ParseMode        `json:"parse_mode"`
}
