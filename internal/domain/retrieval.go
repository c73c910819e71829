package domain

// Source labels attached to retrieval results and citations.
const (
	SourceProductMaster = "Product_Master"
	SourceKnowledgeBase = "Knowledge_Base"
)

// RetrievalResult is one matched document from a similarity query,
// already converted from raw distance to a relevance score.
type RetrievalResult struct {
	Text           string            `json:"text"`
	Metadata       map[string]string `json:"metadata"`
	RelevanceScore float64           `json:"relevance_score"` // 1 = identical, clamped to [0,1]; 0 when no distance was reported
	Source         string            `json:"source"`
	Citation       string            `json:"citation"`
}

// Citation points a rewritten claim back at the collection entry it came from
type Citation struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
}
