package scrape

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mohammad-safakhou/chatfusion/internal/helpers"
)

// Mode selects how the Content field is produced.
type Mode string

const (
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
)

const (
	DefaultMaxChars = 10000
	noTitle         = "No Title"
	ignoredElements = "script, style, noscript, iframe"
)

// Extract reduces raw HTML to a Page. Content is capped at maxChars runes.
func Extract(pageURL, html string, mode Mode, maxChars int) (Page, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{URL: pageURL, Error: err.Error()}, fmt.Errorf("parse html: %w", err)
	}
	doc.Find(ignoredElements).Remove()

	page := Page{
		URL:             pageURL,
		Title:           extractTitle(doc),
		MetaDescription: extractMetaDescription(doc),
		Headings: Headings{
			H1: joinText(doc.Find("h1")),
			H2: joinText(doc.Find("h2")),
		},
		Paragraphs: joinText(doc.Find("p")),
		ListItems:  joinText(doc.Find("li")),
		Links:      extractLinks(doc),
		Images:     extractImages(doc),
	}

	if mode == ModeMarkdown {
		if body, ok := articleMarkdown(pageURL, html); ok {
			content := page.Title + "\n\n" + body
			page.Content = helpers.TruncateRunes(strings.TrimSpace(content), maxChars)
			return page, nil
		}
	}

	combined := strings.Join([]string{
		page.Title,
		page.MetaDescription,
		page.Headings.H1,
		page.Headings.H2,
		page.Paragraphs,
		page.ListItems,
		helpers.CleanText(doc.Find("body").Text()),
	}, " ")
	page.Content = helpers.TruncateRunes(helpers.CleanText(combined), maxChars)
	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	if title := plainText(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return noTitle
}

func extractMetaDescription(doc *goquery.Document) string {
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return plainText(desc)
}

// plainText strips markup that survives as text in titles and attributes.
func plainText(s string) string {
	return helpers.CleanText(helpers.SanitizeHTMLStrict(s))
}

func joinText(sel *goquery.Selection) string {
	parts := sel.Map(func(_ int, s *goquery.Selection) string {
		return helpers.CleanText(s.Text())
	})
	return helpers.CleanText(strings.Join(parts, " "))
}

func extractLinks(doc *goquery.Document) []Link {
	links := []Link{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{Text: helpers.CleanText(s.Text()), Href: href})
	})
	return links
}

func extractImages(doc *goquery.Document) []Image {
	images := []Image{}
	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		src, _ := s.Attr("src")
		images = append(images, Image{Alt: plainText(alt), Src: src})
	})
	return images
}

// articleMarkdown runs readability over the page and converts the sanitised
// article body to Markdown. ok is false when no article could be isolated.
func articleMarkdown(pageURL, html string) (string, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return "", false
	}
	converter := md.NewConverter(u.Host, true, nil)
	out, err := converter.ConvertString(helpers.SanitizeArticleHTML(article.Content))
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	return strings.TrimSpace(out), true
}
