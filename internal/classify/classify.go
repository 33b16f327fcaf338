// Package classify assigns each posting a job category and a phone-requirement
// flag using keyword heuristics over title, tags, and description.
package classify

import (
	"strings"

	"github.com/jaume/remotejobs/internal/model"
)

// categoryRule matches a set of keywords against the lower-cased title or,
// when overTags is set, against the lower-cased tag list.
type categoryRule struct {
	keywords []string
	category model.Category
	overTags bool
}

// categoryRules are evaluated top to bottom; the first match wins. The order
// is policy: support keywords outrank dev keywords, so a "Customer Support
// Engineer" lands in support. Reordering changes classification outcomes.
var categoryRules = []categoryRule{
	{keywords: []string{"support", "customer", "service", "helpdesk", "help desk"}, category: model.CategorySupport},
	{keywords: []string{"moderator", "moderation", "content review", "trust & safety"}, category: model.CategoryModeration},
	{keywords: []string{"data entry", "transcription", "typing", "data input"}, category: model.CategoryDataEntry},
	{keywords: []string{"virtual assistant", "executive assistant", "personal assistant", "admin assistant"}, category: model.CategoryVA},
	{keywords: []string{"developer", "engineer", "programmer", "software", "frontend", "backend", "fullstack"}, category: model.CategoryDev},
	{keywords: []string{"javascript", "python", "react", "node", "golang", "rust"}, category: model.CategoryDev, overTags: true},
	{keywords: []string{"designer", "design", "ui", "ux", "graphic"}, category: model.CategoryDesign},
	{keywords: []string{"marketing", "seo", "content", "social media", "growth"}, category: model.CategoryMarketing},
	{keywords: []string{"sales", "account executive", "sdr", "bdr", "business development"}, category: model.CategorySales},
	{keywords: []string{"writer", "copywriter", "editor", "content creator"}, category: model.CategoryWriting},
	{keywords: []string{"recruiter", "recruiting", "hr ", "human resources", "people ops"}, category: model.CategoryHR},
}

// noPhoneKeywords explicitly indicate work without live calls. Checked first
// and short-circuiting, so an incidental "phone" elsewhere in the text does
// not hide a genuine no-phone posting.
var noPhoneKeywords = []string{
	"chat", "email", "written", "async", "text",
	"no phone", "non-phone", "no calls", "email only",
	"chat support", "email support", "written communication",
}

// phoneKeywords indicate the role likely requires voice work.
var phoneKeywords = []string{
	"phone", "call", "calling", "inbound", "outbound",
	"voice", "telephon",
}

// Categorize maps a title and tag list to exactly one category.
// Unmatched titles, including the empty string, fall through to "other".
func Categorize(title string, tags []string) model.Category {
	titleLower := strings.ToLower(title)

	tagsLower := make([]string, len(tags))
	for i, t := range tags {
		tagsLower[i] = strings.ToLower(t)
	}

	for _, rule := range categoryRules {
		if rule.overTags {
			for _, tag := range tagsLower {
				for _, kw := range rule.keywords {
					if tag == kw {
						return rule.category
					}
				}
			}
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(titleLower, kw) {
				return rule.category
			}
		}
	}

	return model.CategoryOther
}

// NoPhone reports whether a posting looks phone-free. A no-phone indicator
// anywhere in title+description wins immediately; otherwise a phone indicator
// means false; with no indicator at all the answer is false (assume a phone
// may be required).
func NoPhone(title, description string) bool {
	text := strings.ToLower(title + " " + description)

	for _, kw := range noPhoneKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	for _, kw := range phoneKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}

	return false
}
