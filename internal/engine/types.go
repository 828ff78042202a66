package engine

// --- Tool input types ---

type CommentsInput struct {
	URL string `json:"url" jsonschema:"Video URL (YouTube watch, shorts or youtu.be link)"`
}

type HistoryInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"Max entries to return (default: 20, max: 100)"`
	Status string `json:"status,omitempty" jsonschema:"Filter by outcome: ok or error"`
}
