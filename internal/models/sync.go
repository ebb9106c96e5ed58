package models

// Citation is a source attribution returned alongside search-grounded content.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// SyncResult is what a sync hands back to the dashboard. An empty result means
// nothing new was found or the sync failed.
type SyncResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	Citations     []Citation    `json:"citations,omitempty"`
}
