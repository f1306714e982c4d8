package domain

// Pack is the external knowledge corpus used for grounding. It is fetched
// from a URL, cached for the process lifetime and treated as read-only.
type Pack struct {
	Docs []PackDoc `json:"docs"`
}

// PackDoc groups chunks under an optional document language. An empty Lang
// means the document applies to every requested language.
type PackDoc struct {
	Lang   string      `json:"lang"`
	Chunks []PackChunk `json:"chunks"`
}

// PackChunk is one retrievable passage.
type PackChunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScoredChunk is a chunk with its term-overlap score against a query. Score
// counts distinct query terms present in the chunk, presence only.
type ScoredChunk struct {
	ID    string
	Text  string
	Score int
}
