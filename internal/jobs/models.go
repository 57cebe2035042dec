package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// Employment types accepted on job postings.
const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentFreelance  = "freelance"
)

// Job is a job board posting.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:jb"`

	ID             uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	Slug           string        `bun:"slug,notnull,unique" json:"slug"`
	Title          string        `bun:"title,notnull" json:"title"`
	Company        string        `bun:"company,notnull" json:"company"`
	Location       string        `bun:"location" json:"location,omitempty"`
	EmploymentType string        `bun:"employment_type" json:"employment_type,omitempty"`
	Description    string        `bun:"description,notnull" json:"description"`
	ApplyURL       string        `bun:"apply_url" json:"apply_url,omitempty"`
	Salary         string        `bun:"salary" json:"salary,omitempty"`
	SubmitterEmail string        `bun:"submitter_email" json:"submitter_email,omitempty"`
	ExpiresAt      *time.Time    `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	Status         domain.Status `bun:"status,notnull,default:'pending'" json:"status"`
	Position       int           `bun:"position,notnull,default:0" json:"position"`
	ReviewNote     string        `bun:"review_note" json:"review_note,omitempty"`
	ReviewedBy     string        `bun:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `bun:"reviewed_at,nullzero" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Expired reports whether the posting closed before now.
func (j *Job) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && j.ExpiresAt.Before(now)
}

func cloneJob(j *Job) *Job {
	if j == nil {
		return nil
	}
	cloned := *j
	if j.ExpiresAt != nil {
		v := *j.ExpiresAt
		cloned.ExpiresAt = &v
	}
	if j.ReviewedAt != nil {
		v := *j.ReviewedAt
		cloned.ReviewedAt = &v
	}
	return &cloned
}

func validEmploymentType(value string) bool {
	switch value {
	case "", EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentFreelance:
		return true
	default:
		return false
	}
}
