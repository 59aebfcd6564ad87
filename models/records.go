package models

// MenuItem is a single navigation entry on a link page.
type MenuItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// GridItem is one product tile on a link page, up to 16 per page.
type GridItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// Page is a templated landing page authored in the dashboard. Everything except
// the visit-independent fields is immutable after creation. JSON field names
// match the persisted blob format.
type Page struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	MenuItems       []MenuItem `json:"menuItems"`
	SliderImages    []string   `json:"sliderImages"`
	CenterImage     string     `json:"centerImage"`
	GridItems       []GridItem `json:"gridItems"`
	CreatedAt       string     `json:"createdAt"`
	IsFileBasedPage bool       `json:"isFileBasedPage,omitempty"`
	FilePath        string     `json:"filePath,omitempty"`
}

// Link is a generated short link pointing at a page. Only Visits is mutated
// after creation.
type Link struct {
	ID        string `json:"id"`
	FullLink  string `json:"fullLink"`
	PageID    string `json:"pageId"`
	CreatedAt string `json:"createdAt"`
	Visits    int    `json:"visits"`
}

// SearchResultKind discriminates the variants of a search result.
type SearchResultKind string

const (
	ResultPage SearchResultKind = "page"
	ResultLink SearchResultKind = "link"
)

// SearchResult is a tagged variant over Page and Link. Exactly one of Page or
// Link is non-nil, matching Kind.
type SearchResult struct {
	Kind SearchResultKind `json:"kind"`
	Page *Page            `json:"page,omitempty"`
	Link *Link            `json:"link,omitempty"`
}
