// Package canonical turns raw source records into canonical job entities:
// stable identity, cleaned fields, category and phone classification, and a
// normalized salary range.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jaume/remotejobs/internal/classify"
	"github.com/jaume/remotejobs/internal/model"
	"github.com/jaume/remotejobs/internal/salary"
)

// ErrIncomplete marks a raw record missing one of the required fields
// (source, source ID, title, URL). Such records are dropped, not fatal.
var ErrIncomplete = errors.New("raw record incomplete")

// DefaultCurrency is the currency code stamped on every salary range.
const DefaultCurrency = "USD"

const (
	defaultCompany  = "Unknown"
	defaultLocation = "Remote"
)

// JobID derives the global identity for a posting. It is a pure function of
// (source, sourceID): a truncated SHA-256 digest, so edits to any other field
// map back to the same stored record. The hash is for collision resistance
// only, not any security property.
func JobID(source, sourceID string) string {
	sum := sha256.Sum256([]byte(source + ":" + sourceID))
	return hex.EncodeToString(sum[:])[:16]
}

// Job assembles the canonical entity for a raw record, classifying it and
// normalizing its salary hints on the way. now becomes the observation
// timestamp. Returns ErrIncomplete when required fields are missing.
func Job(raw model.RawJob, now time.Time) (model.Job, error) {
	switch {
	case raw.Source == "":
		return model.Job{}, fmt.Errorf("%w: missing source", ErrIncomplete)
	case raw.SourceID == "":
		return model.Job{}, fmt.Errorf("%w: missing source id", ErrIncomplete)
	case raw.Title == "":
		return model.Job{}, fmt.Errorf("%w: missing title", ErrIncomplete)
	case raw.URL == "":
		return model.Job{}, fmt.Errorf("%w: missing url", ErrIncomplete)
	}

	company := raw.Company
	if company == "" {
		company = defaultCompany
	}
	location := raw.Location
	if location == "" {
		location = defaultLocation
	}

	job := model.Job{
		ID:             JobID(raw.Source, raw.SourceID),
		Source:         raw.Source,
		SourceID:       raw.SourceID,
		Title:          raw.Title,
		Company:        company,
		CompanyLogo:    raw.CompanyLogo,
		Description:    raw.Description,
		Location:       location,
		SalaryCurrency: DefaultCurrency,
		URL:            raw.URL,
		ApplyURL:       raw.ApplyURL,
		Tags:           raw.Tags,
		Category:       classify.Categorize(raw.Title, raw.Tags),
		IsNoPhone:      classify.NoPhone(raw.Title, raw.Description),
		PostedAt:       raw.PostedAt,
		ScrapedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
		IsActive:       true,
	}

	// Structured hints win over free text: a source that states numbers has
	// already committed to them.
	if r, ok := salary.FromBounds(raw.SalaryMin, raw.SalaryMax, salary.UnitAnnual); ok {
		job.SalaryMin, job.SalaryMax = &r.Min, &r.Max
	} else if r, ok := salary.Parse(raw.SalaryText, salary.UnitUnknown); ok {
		job.SalaryMin, job.SalaryMax = &r.Min, &r.Max
	}

	return job, nil
}
