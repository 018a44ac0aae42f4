// Package detect identifies the applicant tracking system behind a career
// page, from the URL alone when possible and from page markup otherwise.
package detect

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ATS tags. API-capable platforms get served through providers; the rest are
// recorded for routing hints and stats.
const (
	ATSGreenhouse = "greenhouse"
	ATSLever      = "lever"
	ATSWorkday    = "workday"
	ATSJobvite    = "jobvite"
	ATSAshby      = "ashby"
	ATSBambooHR   = "bamboohr"
	ATSGeneric    = "generic"
)

// Confidence levels attached to a detection.
const (
	ConfidenceURL     = 1.0
	ConfidenceHTML    = 0.8
	ConfidenceDefault = 0.5
)

type atsSignature struct {
	ats        string
	urlHosts   []string
	scriptHint string
	metaHint   *regexp.Regexp
	classHint  *regexp.Regexp
}

var signatures = []atsSignature{
	{
		ats:        ATSGreenhouse,
		urlHosts:   []string{"greenhouse.io"},
		scriptHint: "greenhouse",
		metaHint:   regexp.MustCompile(`(?i)greenhouse`),
		classHint:  regexp.MustCompile(`(?i)greenhouse`),
	},
	{
		ats:        ATSLever,
		urlHosts:   []string{"lever.co"},
		scriptHint: "lever",
		metaHint:   regexp.MustCompile(`(?i)lever`),
		classHint:  regexp.MustCompile(`(?i)lever`),
	},
	{
		ats:        ATSWorkday,
		urlHosts:   []string{"myworkdayjobs.com", "workday.com"},
		scriptHint: "workday",
	},
	{
		ats:        ATSJobvite,
		urlHosts:   []string{"jobvite.com"},
		scriptHint: "jobvite",
	},
	{
		ats:        ATSAshby,
		urlHosts:   []string{"ashbyhq.com"},
		scriptHint: "ashby",
	},
	{
		ats:        ATSBambooHR,
		urlHosts:   []string{"bamboohr.com"},
		scriptHint: "bamboohr",
	},
}

// FromURL detects the ATS from URL patterns alone. Empty when unknown.
func FromURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, sig := range signatures {
		for _, host := range sig.urlHosts {
			if strings.Contains(lower, host) {
				return sig.ats
			}
		}
	}
	return ""
}

// FromDocument detects the ATS from page markup. Empty when unknown.
func FromDocument(doc *goquery.Document) string {
	// Generator meta tags are the strongest in-page signal.
	var found string
	doc.Find(`meta[name="generator"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		for _, sig := range signatures {
			if sig.metaHint != nil && sig.metaHint.MatchString(content) {
				found = sig.ats
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := strings.ToLower(s.Text())
		if src, ok := s.Attr("src"); ok {
			content += " " + strings.ToLower(src)
		}
		for _, sig := range signatures {
			if sig.scriptHint != "" && strings.Contains(content, sig.scriptHint) {
				found = sig.ats
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, sig := range signatures {
			if sig.classHint != nil && sig.classHint.MatchString(class) {
				found = sig.ats
				return false
			}
		}
		return true
	})
	return found
}

// Detect combines URL and markup detection. URL matches are authoritative;
// markup matches are strong; anything else falls back to the generic parser.
func Detect(rawURL string, doc *goquery.Document) (ats string, confidence float64) {
	if ats := FromURL(rawURL); ats != "" {
		return ats, ConfidenceURL
	}
	if doc != nil {
		if ats := FromDocument(doc); ats != "" {
			return ats, ConfidenceHTML
		}
	}
	return ATSGeneric, ConfidenceDefault
}
