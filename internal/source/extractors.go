package source

import (
	"strings"

	"github.com/matheuskafuri/headlines/internal/headline"
	"github.com/matheuskafuri/headlines/internal/page"
)

const (
	sportsSelector = `a[data-mptype="headline"]`

	// Investing.com renders its front page with utility classes; these two
	// combinations are the general headline list and the small-cap analysis
	// list.
	financeGeneralSelector  = `a.line-clamp-3.text-base.font-semibold.leading-7.hover\:underline.sm\:line-clamp-2.md\:line-clamp-3.md\:leading-6`
	financeAnalysisSelector = `a.text-inv-blue-500.hover\:text-inv-blue-500.hover\:underline.focus\:text-inv-blue-500.focus\:underline.mb-2.text-base\/\[28px\].font-semibold.\!text-warren-gray-900`

	politicsSelector = `a[href^="/news/"], a[href*="bbc.com/news/"]`
	politicsOrigin   = "https://www.bbc.com"

	healthSelector      = `a.mntl-card-list-items`
	healthTitleSelector = `.card__title-text`
)

type sportsExtractor struct{}

func (sportsExtractor) Candidates(p *page.Page) []headline.RawItem {
	return anchors(p.QueryAll(sportsSelector))
}

// financeExtractor returns every general headline before any analysis
// headline, regardless of where each appears in the document.
type financeExtractor struct{}

func (financeExtractor) Candidates(p *page.Page) []headline.RawItem {
	general := anchors(p.QueryAll(financeGeneralSelector))
	analysis := anchors(p.QueryAll(financeAnalysisSelector))
	return append(general, analysis...)
}

type politicsExtractor struct{}

func (politicsExtractor) Candidates(p *page.Page) []headline.RawItem {
	els := p.QueryAll(politicsSelector)
	out := make([]headline.RawItem, 0, len(els))
	for _, el := range els {
		href, _ := el.Attr("href")
		out = append(out, headline.RawItem{Text: el.Text(), Link: politicsLink(href)})
	}
	return out
}

// politicsLink prefixes site-relative paths with the BBC origin.
func politicsLink(href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "https"), strings.HasPrefix(href, "http://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return politicsOrigin + href
	default:
		return politicsOrigin + "/" + href
	}
}

// healthExtractor reads the title from the card's nested title element;
// the anchor's own text includes bylines and tags.
type healthExtractor struct{}

func (healthExtractor) Candidates(p *page.Page) []headline.RawItem {
	els := p.QueryAll(healthSelector)
	out := make([]headline.RawItem, 0, len(els))
	for _, el := range els {
		var text string
		if title, ok := el.Find(healthTitleSelector); ok {
			text = title.Text()
		}
		out = append(out, headline.RawItem{Text: text, Link: el.Href()})
	}
	return out
}

func anchors(els []page.Element) []headline.RawItem {
	out := make([]headline.RawItem, 0, len(els))
	for _, el := range els {
		out = append(out, headline.RawItem{Text: el.Text(), Link: el.Href()})
	}
	return out
}
