package htmlparse

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseJob_FullPage(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<h1 class="job-title">Senior Backend Engineer</h1>
		<span class="job-location">Berlin, Germany</span>
		<div class="job-description">We are building a distributed crawl system
			and need someone who has shipped production services before. You will
			own the scheduler and the storage layer end to end.</div>
		<ul class="qualifications">
			<li>5+ years with Go or similar</li>
			<li>Experience with PostgreSQL</li>
		</ul>
		<time datetime="2025-03-10T00:00:00Z">March 10</time>
		<a class="apply-button" href="/apply/123">Apply now</a>
	</body></html>`)

	job := ParseJob(doc, "https://careers.example.com/jobs/123")
	require.NotNil(t, job)

	assert.Equal(t, "Senior Backend Engineer", job.Title)
	assert.Equal(t, "Berlin, Germany", job.Location)
	assert.Contains(t, job.Description, "distributed crawl system")
	assert.Contains(t, job.Requirements, "PostgreSQL")
	assert.Equal(t, "https://careers.example.com/apply/123", job.ApplicationURL)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), job.PostedDate.UTC())
}

func TestParseJob_FallbacksToH1AndJobURL(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<h1>Platform Engineer</h1>
		<p>Short page with nothing else.</p>
	</body></html>`)

	job := ParseJob(doc, "https://careers.example.com/jobs/9")
	require.NotNil(t, job)
	assert.Equal(t, "Platform Engineer", job.Title)
	// No apply link means the posting page itself is the application URL.
	assert.Equal(t, "https://careers.example.com/jobs/9", job.ApplicationURL)
	assert.Empty(t, job.Location)
	assert.Nil(t, job.PostedDate)
}

func TestParseJob_TitleFromMeta(t *testing.T) {
	doc := docFrom(t, `<html><head>
		<meta property="og:title" content="Staff Data Engineer">
	</head><body><p>No headings here.</p></body></html>`)

	job := ParseJob(doc, "https://careers.example.com/jobs/1")
	require.NotNil(t, job)
	assert.Equal(t, "Staff Data Engineer", job.Title)
}

func TestParseJob_NoTitle(t *testing.T) {
	doc := docFrom(t, `<html><body><p>Nothing here</p></body></html>`)
	assert.Nil(t, ParseJob(doc, "https://careers.example.com/x"))
}

func TestParseJob_LocationFromText(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<h1>Engineering Manager</h1>
		<p>Location: Austin, TX
		</p>
	</body></html>`)

	job := ParseJob(doc, "https://careers.example.com/jobs/2")
	require.NotNil(t, job)
	assert.Equal(t, "Austin, TX", job.Location)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "one two three", CleanText("  one \n two\t\tthree  "))
	assert.Equal(t, "", CleanText("   \n\t "))
}

func TestJobLinks_StandardPatterns(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<a href="/jobs/1" class="job-link">Backend Engineer</a>
		<a href="/jobs/2">Frontend Engineer</a>
		<a href="https://other.example.com/position/3">Designer</a>
		<a href="#top">Back to top</a>
		<a href="/jobs/1" class="posting">Backend Engineer (dup)</a>
	</body></html>`)

	links := JobLinks(doc, "https://careers.example.com/openings")
	assert.Equal(t, []string{
		"https://careers.example.com/jobs/1",
		"https://careers.example.com/jobs/2",
		"https://other.example.com/position/3",
	}, links)
}

func TestJobLinks_BroadFallback(t *testing.T) {
	doc := docFrom(t, `<html><body>
		<a href="/openings/alpha">Senior Software Engineer</a>
		<a href="/company">About us</a>
		<a href="/auth">Sign in</a>
		<a href="/openings/beta">Product Designer</a>
	</body></html>`)

	links := JobLinks(doc, "https://careers.example.com/")
	assert.Equal(t, []string{
		"https://careers.example.com/openings/alpha",
		"https://careers.example.com/openings/beta",
	}, links)
}

func TestJobLinks_Empty(t *testing.T) {
	doc := docFrom(t, `<html><body><p>We are not hiring.</p></body></html>`)
	assert.Empty(t, JobLinks(doc, "https://careers.example.com/"))
}
