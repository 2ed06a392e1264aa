package news

// Headline is the reshaped article returned to clients.
type Headline struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Article mirrors the subset of a NewsAPI article this service reads.
type Article struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
}

func (a Article) Headline() Headline {
	return Headline{
		Title:  a.Title,
		URL:    a.URL,
		Source: a.Source.Name,
	}
}
