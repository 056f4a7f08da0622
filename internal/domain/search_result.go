package domain

// SearchResult is a transient retrieval hit. Similarity is nil for hits
// produced by keyword-only matching; ranking treats nil as 0.
type SearchResult struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Similarity *float64 `json:"similarity"`
	Source     string   `json:"source"`
}

// RankScore returns the value used for ordering merged result sets.
func (r *SearchResult) RankScore() float64 {
	if r.Similarity == nil {
		return 0
	}
	return *r.Similarity
}
