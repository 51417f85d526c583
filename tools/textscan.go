package tools

import (
	"regexp"
	"sort"
	"strings"
)

// Skill vocabulary scanned for in job descriptions and resumes.
var skillKeywords = []string{
	"python", "java", "javascript", "typescript", "go", "react", "angular",
	"vue", "node.js", "sql", "postgresql", "mysql", "mongodb", "redis",
	"elasticsearch", "aws", "azure", "gcp", "docker", "kubernetes", "jenkins",
	"git", "github", "gitlab", "agile", "scrum", "kanban", "jira",
	"confluence", "excel", "tableau", "power bi", "looker", "salesforce",
	"hubspot", "google analytics",
}

var requirementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\+?\s*years?\s*(?:of\s*)?experience`),
	regexp.MustCompile(`bachelor'?s?\s*degree`),
	regexp.MustCompile(`master'?s?\s*degree`),
	regexp.MustCompile(`phd|doctorate`),
	regexp.MustCompile(`experience\s*(?:with|in)\s*[\w\s]+`),
	regexp.MustCompile(`knowledge\s*(?:of|in)\s*[\w\s]+`),
	regexp.MustCompile(`proficiency\s*(?:with|in)\s*[\w\s]+`),
}

var stopwords = map[string]bool{
	"that": true, "with": true, "will": true, "have": true, "this": true,
	"they": true, "from": true, "your": true, "their": true, "about": true,
	"work": true, "team": true, "role": true,
}

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// extractSkills returns the skills from the shared vocabulary that appear in
// text, title-cased, capped at limit.
func extractSkills(text string, limit int) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range skillKeywords {
		if strings.Contains(lower, skill) {
			found = append(found, titleCase(skill))
		}
		if len(found) == limit {
			break
		}
	}
	return found
}

// extractRequirements pulls requirement-shaped phrases from a job
// description, at most three per pattern and ten overall.
func extractRequirements(jobDescription string) []string {
	lower := strings.ToLower(jobDescription)
	var requirements []string
	for _, pattern := range requirementPatterns {
		matches := pattern.FindAllString(lower, 3)
		for _, m := range matches {
			requirements = append(requirements, strings.TrimSpace(m))
		}
	}
	if len(requirements) > 10 {
		requirements = requirements[:10]
	}
	return requirements
}

// experienceLevel buckets a job description into a seniority band based on
// the phrasing it uses.
func experienceLevel(jobDescription string) string {
	lower := strings.ToLower(jobDescription)
	switch {
	case containsAny(lower, "senior", "5+ years", "7+ years", "lead", "principal"):
		return "Senior Level (5+ years)"
	case containsAny(lower, "3+ years", "4+ years", "mid-level", "intermediate"):
		return "Mid Level (3-5 years)"
	case containsAny(lower, "entry level", "junior", "0-2 years", "new grad"):
		return "Entry Level (0-2 years)"
	default:
		return "Experience level not clearly specified"
	}
}

// extractTopKeywords returns the most frequent non-stopword terms of four or
// more letters, title-cased, in descending frequency order.
func extractTopKeywords(text string, limit int) []string {
	freq := make(map[string]int)
	for _, word := range wordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if stopwords[lower] {
			continue
		}
		freq[lower]++
	}

	words := make([]string, 0, len(freq))
	for word := range freq {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return words
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
