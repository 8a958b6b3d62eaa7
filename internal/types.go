package internal

// ShortLink is a single registry entry. Field names double as the persisted
// JSON layout, so renaming a tag is a breaking change for existing registries.
type ShortLink struct {
	ID          string `json:"id"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	CreatedAt   Date   `json:"createdAt"`
	Clicks      int64  `json:"clicks"`
	Alias       string `json:"alias,omitempty"`
}
