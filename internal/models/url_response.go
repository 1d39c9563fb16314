package models

// URLData is the per-URL projection shown in the user's list
type URLData struct {
	OrigURL  string `json:"origUrl"`
	ShortURL string `json:"shortUrl"`
	Count    int    `json:"count"`
}
