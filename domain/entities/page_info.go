package entities

// PageInfo captures where the browser was when a step finished
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
