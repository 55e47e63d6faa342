package testsupport

import (
	"fmt"
	"strings"
)

// RSSEntry describes one channel item in a generated RSS fixture.
type RSSEntry struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	Content     string
}

// RSSDocument builds a minimal RSS 2.0 document for feed parsing tests.
func RSSDocument(title, description string, entries ...RSSEntry) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">` + "\n")
	sb.WriteString("<channel>\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	fmt.Fprintf(&sb, "<description>%s</description>\n", description)
	for _, entry := range entries {
		sb.WriteString("<item>\n")
		fmt.Fprintf(&sb, "<title>%s</title>\n", entry.Title)
		fmt.Fprintf(&sb, "<link>%s</link>\n", entry.Link)
		if entry.Description != "" {
			fmt.Fprintf(&sb, "<description>%s</description>\n", entry.Description)
		}
		if entry.PubDate != "" {
			fmt.Fprintf(&sb, "<pubDate>%s</pubDate>\n", entry.PubDate)
		}
		if entry.Content != "" {
			fmt.Fprintf(&sb, "<content:encoded><![CDATA[%s]]></content:encoded>\n", entry.Content)
		}
		sb.WriteString("</item>\n")
	}
	sb.WriteString("</channel>\n</rss>\n")
	return sb.String()
}

// ArticleHTML builds a small readable HTML page for extraction tests.
func ArticleHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<article>
<h1>%s</h1>
<p>%s</p>
<p>%s</p>
</article>
</body>
</html>`, title, title, body, body)
}
