package classify

import (
	"testing"

	"github.com/jaume/remotejobs/internal/model"
)

func TestCategorizeTable(t *testing.T) {
	tests := []struct {
		name  string
		title string
		tags  []string
		want  model.Category
	}{
		{"support", "Customer Support Specialist", nil, model.CategorySupport},
		{"helpdesk", "IT Helpdesk Technician", nil, model.CategorySupport},
		{"moderation", "Content Moderator (Night Shift)", nil, model.CategoryModeration},
		{"data entry", "Remote Data Entry Clerk", nil, model.CategoryDataEntry},
		{"va", "Virtual Assistant for Founder", nil, model.CategoryVA},
		{"dev title", "Senior Backend Developer", nil, model.CategoryDev},
		{"dev via tags", "Build cool things", []string{"Python", "Django"}, model.CategoryDev},
		{"design", "Product Designer", nil, model.CategoryDesign},
		{"marketing", "SEO Manager", nil, model.CategoryMarketing},
		{"sales", "Account Executive", nil, model.CategorySales},
		{"writing", "Technical Writer", nil, model.CategoryWriting},
		{"hr", "Recruiter, GTM roles", nil, model.CategoryHR},
		{"no match", "Warehouse Operations Lead", nil, model.CategoryOther},
		{"empty title", "", nil, model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.title, tt.tags); got != tt.want {
				t.Errorf("Categorize(%q, %v) = %q, want %q", tt.title, tt.tags, got, tt.want)
			}
		})
	}
}

// Titles matching several rule sets must resolve to the earliest rule.
func TestCategorizeFirstRuleWins(t *testing.T) {
	// "Customer Support Engineer" matches both support and dev keywords.
	if got := Categorize("Customer Support Engineer", nil); got != model.CategorySupport {
		t.Errorf("got %q, want support (support rule precedes dev rule)", got)
	}
	// "Design Engineer" matches dev before design.
	if got := Categorize("Design Engineer", nil); got != model.CategoryDev {
		t.Errorf("got %q, want dev (dev rule precedes design rule)", got)
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	valid := make(map[model.Category]bool)
	for _, c := range model.Categories() {
		valid[c] = true
	}

	titles := []string{
		"", "Customer Support Engineer", "zzz", "Growth & Sales & Design",
		"PHONE SUPPORT", "éditeur", "data entry / typing / support",
	}
	for _, title := range titles {
		got := Categorize(title, nil)
		if !valid[got] {
			t.Errorf("Categorize(%q) = %q, not in the fixed category set", title, got)
		}
	}
}

func TestNoPhonePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"no-phone indicator wins over phone", "Phone Support and Email Support", "", true},
		{"chat support", "Chat Support Agent", "", true},
		{"async in description", "Operations Coordinator", "fully async team", true},
		{"phone only", "Inbound Phone Agent", "handle calls all day", false},
		{"voice", "Voice Support", "", false},
		{"no indicators", "Bookkeeper", "reconcile ledgers", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoPhone(tt.title, tt.description); got != tt.want {
				t.Errorf("NoPhone(%q, %q) = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}
