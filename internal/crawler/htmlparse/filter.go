package htmlparse

import (
	"regexp"
	"strings"

	"github.com/target/jobwatch/internal/domain/model"
)

// Filter narrows harvested postings to the roles worth storing.
// A zero Filter matches everything.
type Filter struct {
	keywords         []string
	requiredKeywords []string
	excludedKeywords []string
	titleKeywords    []string
	minMatches       int

	keywordRes  []*regexp.Regexp
	requiredRes []*regexp.Regexp
	excludedRes []*regexp.Regexp
	titleRes    []*regexp.Regexp
}

// FilterSpec declares filter criteria. All keyword matching is
// case-insensitive on word boundaries.
type FilterSpec struct {
	// Keywords counted toward MinMatches anywhere in the posting.
	Keywords []string
	// RequiredKeywords must all appear.
	RequiredKeywords []string
	// ExcludedKeywords reject the posting when any appears.
	ExcludedKeywords []string
	// TitleKeywords require at least one match in the title alone.
	TitleKeywords []string
	// MinMatches is the Keywords quota; defaults to 1 when Keywords is set.
	MinMatches int
}

// NewFilter compiles a FilterSpec.
func NewFilter(spec FilterSpec) *Filter {
	min := spec.MinMatches
	if min <= 0 {
		min = 1
	}
	return &Filter{
		keywords:         lowerAll(spec.Keywords),
		requiredKeywords: lowerAll(spec.RequiredKeywords),
		excludedKeywords: lowerAll(spec.ExcludedKeywords),
		titleKeywords:    lowerAll(spec.TitleKeywords),
		minMatches:       min,
		keywordRes:       compileAll(spec.Keywords),
		requiredRes:      compileAll(spec.RequiredKeywords),
		excludedRes:      compileAll(spec.ExcludedKeywords),
		titleRes:         compileAll(spec.TitleKeywords),
	}
}

// Matches reports whether the posting passes the filter.
func (f *Filter) Matches(job *model.Job) bool {
	if f == nil {
		return true
	}

	text := strings.ToLower(strings.Join([]string{
		job.Title, job.Description, job.Requirements, job.Location,
	}, " "))

	for _, re := range f.excludedRes {
		if re.MatchString(text) {
			return false
		}
	}

	for _, re := range f.requiredRes {
		if !re.MatchString(text) {
			return false
		}
	}

	if len(f.titleRes) > 0 {
		title := strings.ToLower(job.Title)
		ok := false
		for _, re := range f.titleRes {
			if re.MatchString(title) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(f.keywordRes) > 0 {
		matches := 0
		for _, re := range f.keywordRes {
			if re.MatchString(text) {
				matches++
			}
		}
		if matches < f.minMatches {
			return false
		}
	}

	return true
}

// MatchedKeywords lists which keywords hit, for explaining filter results.
func (f *Filter) MatchedKeywords(job *model.Job) []string {
	text := strings.ToLower(strings.Join([]string{
		job.Title, job.Description, job.Requirements,
	}, " "))

	seen := make(map[string]bool)
	var out []string
	for i, re := range f.keywordRes {
		if re.MatchString(text) && !seen[f.keywords[i]] {
			seen[f.keywords[i]] = true
			out = append(out, f.keywords[i])
		}
	}
	for i, re := range f.requiredRes {
		if re.MatchString(text) && !seen[f.requiredKeywords[i]] {
			seen[f.requiredKeywords[i]] = true
			out = append(out, f.requiredKeywords[i])
		}
	}
	return out
}

// PredefinedFilters are ready-made filters for common searches.
var PredefinedFilters = map[string]FilterSpec{
	"security": {
		Keywords: []string{
			"security", "infosec", "cybersecurity", "appsec",
			"application security", "security engineer", "penetration testing",
			"vulnerability", "threat", "security analyst",
		},
		TitleKeywords: []string{"security"},
	},
	"backend": {
		Keywords: []string{
			"backend", "api", "server", "microservices", "database",
			"python", "java", "go", "node.js", "rest", "graphql",
		},
		TitleKeywords:    []string{"backend", "server", "api"},
		ExcludedKeywords: []string{"frontend", "mobile", "ios", "android"},
	},
	"frontend": {
		Keywords: []string{
			"frontend", "react", "vue", "angular", "javascript", "typescript",
			"css", "html", "ui", "ux", "web",
		},
		TitleKeywords:    []string{"frontend", "ui", "ux", "web"},
		ExcludedKeywords: []string{"backend"},
	},
	"devops": {
		Keywords: []string{
			"devops", "sre", "kubernetes", "docker", "aws", "gcp", "azure",
			"terraform", "ansible", "ci/cd", "jenkins", "infrastructure",
		},
		TitleKeywords: []string{"devops", "sre", "infrastructure", "platform"},
	},
	"ml": {
		Keywords: []string{
			"machine learning", "ml", "ai", "artificial intelligence",
			"deep learning", "pytorch", "tensorflow", "data science",
			"nlp", "computer vision", "models",
		},
		TitleKeywords: []string{"ml", "machine learning", "ai", "data science"},
	},
	"senior": {
		TitleKeywords:    []string{"senior", "lead", "principal", "staff"},
		ExcludedKeywords: []string{"junior", "intern", "entry"},
	},
	"remote": {
		Keywords: []string{"remote", "work from home", "distributed", "anywhere"},
	},
}

// GetFilter returns a compiled predefined filter by name, or nil.
func GetFilter(name string) *Filter {
	spec, ok := PredefinedFilters[strings.ToLower(name)]
	if !ok {
		return nil
	}
	f := NewFilter(spec)
	return f
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func compileAll(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, k := range keywords {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
	}
	return out
}
