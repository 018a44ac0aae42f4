package htmlparse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	jobLinkClassRe = regexp.MustCompile(`(?i)job.*link|position.*link|posting`)
	jobLinkHrefRe  = regexp.MustCompile(`(?i)/job/|/jobs/|/position/|/careers/|/posting/`)
)

// Navigation link text that is never a posting.
var skipLinkText = []string{"home", "about", "contact", "login", "sign in"}

// Role words that suggest a link text names a job.
var roleKeywords = []string{
	"engineer", "developer", "designer", "manager", "analyst",
	"director", "lead", "senior", "junior", "intern",
	"specialist", "coordinator", "associate", "consultant",
}

// JobLinks extracts posting URLs from a career listing page. Standard
// patterns first; when they find nothing, a broader text-based sweep.
func JobLinks(doc *goquery.Document, baseURL string) []string {
	links := standardJobLinks(doc, baseURL)
	if len(links) == 0 {
		links = broadJobLinks(doc, baseURL)
	}
	return links
}

func standardJobLinks(doc *goquery.Document, baseURL string) []string {
	var links []string
	seen := make(map[string]bool)

	add := func(href string) {
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		resolved := resolveURL(baseURL, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		class, _ := s.Attr("class")
		if jobLinkClassRe.MatchString(class) || jobLinkHrefRe.MatchString(href) {
			add(href)
		}
	})
	return links
}

func broadJobLinks(doc *goquery.Document, baseURL string) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.ToLower(CleanText(s.Text()))

		for _, skip := range skipLinkText {
			if strings.Contains(text, skip) {
				return
			}
		}

		matched := false
		for _, kw := range roleKeywords {
			if strings.Contains(text, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		resolved := resolveURL(baseURL, href)
		if resolved == "" || resolved == baseURL || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links
}

// resolveURL makes href absolute against base. Empty on unparsable input.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}
