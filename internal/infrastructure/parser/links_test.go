package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"KijiScanner/internal/domain"
)

func TestExtractLinksNHK(t *testing.T) {
	t.Parallel()

	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
<channel>
<title>NHKニュース</title>
<link>http://www3.nhk.or.jp/news/</link>
<atom:link href="http://www3.nhk.or.jp/rss/news/cat1.xml" rel="self"/>
<item><title>a</title><link>http://www3.nhk.or.jp/news/html/a.html</link></item>
<item><title>b</title><link>http://www3.nhk.or.jp/news/html/b.html</link></item>
<item><title>a again</title><link>http://www3.nhk.or.jp/news/html/a.html</link></item>
<item><title>c</title><link>
  http://www3.nhk.or.jp/news/html/c.html
</link></item>
</channel>
</rss>`

	got := ExtractLinks([]byte(feed), domain.OriginNHK)

	assert.Equal(t, []string{
		"http://www3.nhk.or.jp/news/html/a.html",
		"http://www3.nhk.or.jp/news/html/b.html",
		"http://www3.nhk.or.jp/news/html/a.html",
		"http://www3.nhk.or.jp/news/html/c.html",
	}, got)
}

func TestExtractLinksAsahiRDF(t *testing.T) {
	t.Parallel()

	feed := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
<channel rdf:about="http://www3.asahi.com/rss/sports.rdf"><link>https://www.asahi.com/</link></channel>
<item rdf:about="https://www.asahi.com/articles/X1.html"><link><![CDATA[https://www.asahi.com/articles/X1.html]]></link></item>
<item rdf:about="https://www.asahi.com/articles/X2.html"><link>https://www.asahi.com/articles/X2.html</link></item>
</rdf:RDF>`

	got := ExtractLinks([]byte(feed), domain.OriginAsahi)

	assert.Equal(t, []string{
		"https://www.asahi.com/articles/X1.html",
		"https://www.asahi.com/articles/X2.html",
	}, got)
}

func TestExtractLinksDenylistIsPerOrigin(t *testing.T) {
	t.Parallel()

	feed := []byte(`<link>https://www.asahi.com/</link><link>http://www3.nhk.or.jp/news/</link>`)

	assert.Equal(t, []string{"http://www3.nhk.or.jp/news/"}, ExtractLinks(feed, domain.OriginAsahi))
	assert.Equal(t, []string{"https://www.asahi.com/"}, ExtractLinks(feed, domain.OriginNHK))
	assert.Empty(t, ExtractLinks([]byte("not a feed"), domain.OriginNHK))
}
