// Package parse extracts normalized court.Court entities from a fused
// JSON row + HTML document pair published by the courthouse board.
package parse

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/courtwatch/court"
)

// Row is a single element of the upstream XHR JSON array.
type Row struct {
	CourtCode string `json:"courtcode"`
	CaseInfo  string `json:"caseinfo"`
	GSrNo     string `json:"gsrno"`
}

// CardHTML is the raw innerHTML of a row's matching DOM card, captured
// alongside its parsed Court so DeltaEngine can hash it independently of
// the derived fields (spec §4.C's cheap in-memory layer).
type CardHTML struct {
	CourtCode string
	InnerHTML string
	CaseInfo  string
	GSrNo     string
}

var queuePositionRe = regexp.MustCompile(`\d+`)

// Parse decodes the raw JSON rows and locates each row's DOM card in html,
// returning one Court per row that has both a courtcode and a matching
// card. Rows failing either condition are silently dropped (spec §4.B).
// baseOrigin is the courthouse's scheme://host used to resolve root-
// relative hrefs; base is the page URL used to resolve relative photo
// sources.
func Parse(rawRows []json.RawMessage, html []byte, baseOrigin, base string, scrapedAt time.Time) ([]court.Court, []CardHTML, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse: html: %w", err)
	}

	var courts []court.Court
	var cards []CardHTML

	for _, raw := range rawRows {
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			continue // malformed row: drop silently
		}
		if row.CourtCode == "" {
			continue
		}

		card := doc.Find("#dv_" + row.CourtCode)
		if card.Length() == 0 {
			continue
		}

		c := buildCourt(row, card, doc, baseOrigin, base)
		c.ScrapedAt = scrapedAt

		innerHTML, _ := card.Html()
		courts = append(courts, c)
		cards = append(cards, CardHTML{
			CourtCode: row.CourtCode,
			InnerHTML: innerHTML,
			CaseInfo:  row.CaseInfo,
			GSrNo:     row.GSrNo,
		})
	}

	return courts, cards, nil
}

func buildCourt(row Row, card *goquery.Selection, doc *goquery.Document, baseOrigin, base string) court.Court {
	c := court.Court{
		CourtCode: row.CourtCode,
		SrNo:      strings.TrimSpace(row.GSrNo),
	}

	c.QueuePosition = parseQueuePosition(c.SrNo)
	c.JudgeName = extractJudgeName(card)
	c.StreamURL = extractStreamURL(card, baseOrigin)
	c.HasStream = c.StreamURL != ""
	c.JudgePhotos = extractPhotos(card, base)
	if len(c.JudgePhotos) >= 2 {
		c.BenchType = court.DivisionBench
	} else {
		c.BenchType = court.SingleBench
	}
	c.JudgeCount = len(c.JudgePhotos)
	c.CourtNumber = extractCourtNumber(doc, row.CourtCode)

	footer := court.ParseFooter(row.CaseInfo)
	c.CaseNumber = footer.CaseNumber
	c.CaseStatus = footer.Status()
	c.CaseType = footer.Type()

	c.IsLive = card.Find(".blink_me").Length() > 0
	c.IsActive = c.IsLive || c.CaseStatus == court.InSession || c.CaseStatus == court.Recess

	return c
}

func extractJudgeName(card *goquery.Selection) string {
	var name string
	if b := card.Find(".card-category b").First(); b.Length() > 0 {
		name = b.Text()
	} else if el := card.Find(".card-header, .card-title, .card-body").First(); el.Length() > 0 {
		name = el.Text()
	}
	name = strings.TrimSpace(name)
	name = trimSuffixFold(name, "[Live]")
	return strings.TrimSpace(name)
}

func extractStreamURL(card *goquery.Selection, baseOrigin string) string {
	href, ok := card.Find("a").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") && baseOrigin != "" {
		return strings.TrimRight(baseOrigin, "/") + href
	}
	return href
}

func extractPhotos(card *goquery.Selection, base string) []string {
	var photos []string
	card.Find(".photoclass, img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, ok = s.Attr("data-src")
			if !ok || src == "" {
				return
			}
		}
		photos = append(photos, resolvePhoto(src, base))
	})
	return photos
}

func resolvePhoto(src, base string) string {
	src = strings.TrimPrefix(src, "./")
	baseURL, err := url.Parse(base)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return baseURL.ResolveReference(ref).String()
}

func extractCourtNumber(doc *goquery.Document, courtCode string) string {
	sel := doc.Find("#court_" + courtCode)
	if sel.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(sel.Text())
	return stripCourtNoPrefix(text)
}

var courtNoPrefixRe = regexp.MustCompile(`(?i)^\s*COURT\s*NO:?\s*`)

func stripCourtNoPrefix(s string) string {
	return strings.TrimSpace(courtNoPrefixRe.ReplaceAllString(s, ""))
}

func parseQueuePosition(srNo string) *int {
	match := queuePositionRe.FindString(srNo)
	if match == "" {
		return nil
	}
	n := 0
	for _, r := range match {
		n = n*10 + int(r-'0')
	}
	return &n
}

func trimSuffixFold(s, suffix string) string {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}
