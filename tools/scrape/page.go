package scrape

// Headings holds the joined text of every h1 and h2 on a page.
type Headings struct {
	H1 string `json:"h1"`
	H2 string `json:"h2"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

type Image struct {
	Alt string `json:"alt"`
	Src string `json:"src"`
}

// Page is the reduced form of a scraped web page. Content is the value that
// gets folded into a prompt and never exceeds the scraper's character cap.
type Page struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	Headings        Headings `json:"headings"`
	Paragraphs      string   `json:"paragraphs"`
	ListItems       string   `json:"listItems"`
	Links           []Link   `json:"links"`
	Images          []Image  `json:"images"`
	Content         string   `json:"content"`
	Error           string   `json:"error,omitempty"`
}
