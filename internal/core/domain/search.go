package domain

// UnknownSource is reported when a match carries no filename.
const UnknownSource = "unknown"

// MaxTopK bounds the number of results a single retrieval may request.
const MaxTopK = 20

// SearchResult is a ranked projection of a vector record for one query.
type SearchResult struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
}

// NewSearchResult maps a store match into a search result.
func NewSearchResult(m VectorMatch) SearchResult {
	source := m.Metadata.Filename
	if source == "" {
		source = UnknownSource
	}
	return SearchResult{
		Content:    m.Metadata.Text,
		Source:     source,
		Score:      m.Score,
		DocumentID: m.Metadata.DocumentID,
		ChunkIndex: m.Metadata.ChunkIndex,
	}
}

// SourceRef attributes part of an answer to a retrieved chunk.
type SourceRef struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is a generated response plus the sources used to ground it,
// aligned one-to-one with the context blocks sent to the model.
type Answer struct {
	Response string      `json:"response"`
	Sources  []SourceRef `json:"sources"`
}
