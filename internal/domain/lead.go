package domain

// Lead is the raw lead payload submitted by the conversation funnel.
type Lead struct {
	Lang       string            `json:"lang"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Interests  string            `json:"interests"`
	Details    string            `json:"details"`
	Transcript []TranscriptEntry `json:"transcript"`
}

// TranscriptEntry is one turn of the funnel conversation attached to a lead.
type TranscriptEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// LeadRecord is the scrubbed, persisted form of a lead.
type LeadRecord struct {
	ID         string
	CreatedAt  string
	Lang       string
	Name       string
	Email      string
	Phone      string
	Interests  string
	Details    string
	Transcript []TranscriptEntry
	IP         string
	UserAgent  string
	TTL        int64
}
