// Package htmlparse is the generic fallback scraper for career pages without
// a structured ATS API. It leans on common markup patterns and degrades to
// text heuristics when those miss.
package htmlparse

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/target/jobwatch/internal/domain/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var (
	titleClassRe       = regexp.MustCompile(`(?i)job.*title|title.*job|position.*title`)
	headingClassRe     = regexp.MustCompile(`(?i)heading|header`)
	locationClassRe    = regexp.MustCompile(`(?i)location`)
	descriptionClassRe = regexp.MustCompile(`(?i)description|job.*desc|about.*role|overview`)
	requirementsRe     = regexp.MustCompile(`(?i)requirements|qualifications|skills|must.*have`)
	applyRe            = regexp.MustCompile(`(?i)apply|submit.*application`)

	locationTextRe = regexp.MustCompile(`(?i)(?:Office |Work )?Location:\s*([^\n]+)`)
	postedTextRe   = regexp.MustCompile(`(?:Posted|Posted on|Date Posted):\s*(\d{4}-\d{2}-\d{2})`)
)

// ParseJob extracts a posting from a job detail page. Returns nil when no
// usable title can be found.
func ParseJob(doc *goquery.Document, jobURL string) *model.Job {
	title := extractTitle(doc)
	if title == "" {
		return nil
	}

	text := doc.Text()

	job := &model.Job{
		Title:          title,
		Description:    extractDescription(doc),
		Requirements:   extractRequirements(doc),
		Location:       extractLocation(doc, text),
		ApplicationURL: extractApplicationURL(doc, jobURL),
		PostedDate:     extractPostedDate(doc, text),
	}
	if job.ApplicationURL == "" {
		job.ApplicationURL = jobURL
	}
	return job
}

func extractTitle(doc *goquery.Document) string {
	candidates := []func() string{
		func() string { return findByClass(doc, "h1", titleClassRe) },
		func() string { return findByClass(doc, "h1", headingClassRe) },
		func() string { return findByClass(doc, "h2", titleClassRe) },
		func() string { return findByClass(doc, "div", titleClassRe) },
		func() string { return findByClass(doc, "span", titleClassRe) },
		func() string { return CleanText(doc.Find("h1").First().Text()) },
	}
	for _, pick := range candidates {
		if title := pick(); len(title) > 5 {
			return title
		}
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return CleanText(content)
	}
	return ""
}

func extractLocation(doc *goquery.Document, text string) string {
	for _, tag := range []string{"div", "span", "p", "li"} {
		if loc := findByClass(doc, tag, locationClassRe); len(loc) > 2 {
			return loc
		}
	}

	if m := locationTextRe.FindStringSubmatch(text); m != nil {
		return CleanText(m[1])
	}

	if content, ok := doc.Find(`meta[property="og:location"]`).Attr("content"); ok {
		return CleanText(content)
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	for _, tag := range []string{"div", "section"} {
		if desc := findByClass(doc, tag, descriptionClassRe); len(desc) > 50 {
			return desc
		}
	}
	if desc := findByID(doc, "div", descriptionClassRe); len(desc) > 50 {
		return desc
	}
	return ""
}

func extractRequirements(doc *goquery.Document) string {
	for _, tag := range []string{"div", "section", "ul"} {
		if reqs := findByClass(doc, tag, requirementsRe); len(reqs) > 20 {
			return reqs
		}
	}
	if reqs := findByID(doc, "div", requirementsRe); len(reqs) > 20 {
		return reqs
	}
	return ""
}

func extractApplicationURL(doc *goquery.Document, baseURL string) string {
	var found string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if applyRe.MatchString(class) || applyRe.MatchString(CleanText(s.Text())) {
			href, _ := s.Attr("href")
			if href != "" && !strings.HasPrefix(href, "#") {
				found = resolveURL(baseURL, href)
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !applyRe.MatchString(class) {
			return true
		}
		if u, ok := s.Attr("data-url"); ok && u != "" {
			found = resolveURL(baseURL, u)
			return false
		}
		if u, ok := s.Attr("data-href"); ok && u != "" {
			found = resolveURL(baseURL, u)
			return false
		}
		return true
	})
	return found
}

func extractPostedDate(doc *goquery.Document, text string) *time.Time {
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			return &t
		}
		if t, err := time.Parse("2006-01-02", dt); err == nil {
			return &t
		}
	}

	if m := postedTextRe.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			return &t
		}
	}
	return nil
}

// findByClass returns the cleaned text of the first tag whose class matches.
func findByClass(doc *goquery.Document, tag string, re *regexp.Regexp) string {
	var out string
	doc.Find(tag + "[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if re.MatchString(class) {
			out = CleanText(s.Text())
			return false
		}
		return true
	})
	return out
}

// findByID returns the cleaned text of the first tag whose id matches.
func findByID(doc *goquery.Document, tag string, re *regexp.Regexp) string {
	var out string
	doc.Find(tag + "[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		if re.MatchString(id) {
			out = CleanText(s.Text())
			return false
		}
		return true
	})
	return out
}
