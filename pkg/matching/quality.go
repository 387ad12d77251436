package matching

import (
	"strings"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/normalizers"
)

// QualityScorer measures record completeness in [0, 1]. Low quality
// routes a group to data quality review before any merge decision.
type QualityScorer struct{}

// NewQualityScorer creates a QualityScorer.
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{}
}

// ContactQuality scores a contact record. Core identity fields weigh
// 1.0, department 0.5.
func (q *QualityScorer) ContactQuality(c *models.ContactRecord) float64 {
	const possible = 5.5
	var achieved float64

	if strings.TrimSpace(c.FirstName) != "" {
		achieved += 1.0
	}
	if strings.TrimSpace(c.LastName) != "" {
		achieved += 1.0
	}
	if strings.Contains(c.Email, "@") {
		achieved += 1.0
	}
	if len(normalizers.DigitsOnly(c.Phone)) >= 10 {
		achieved += 1.0
	}
	if strings.TrimSpace(c.JobTitle) != "" {
		achieved += 1.0
	}
	if strings.TrimSpace(c.Department) != "" {
		achieved += 0.5
	}

	return achieved / possible
}

// AccountQuality scores an account record. Address components weigh 0.5
// each.
func (q *QualityScorer) AccountQuality(a *models.AccountRecord) float64 {
	const possible = 7.0
	var achieved float64

	if strings.TrimSpace(a.AccountName) != "" {
		achieved += 1.0
	}
	if strings.TrimSpace(a.AccountType) != "" {
		achieved += 1.0
	}
	if len(normalizers.DigitsOnly(a.Phone)) >= 10 {
		achieved += 1.0
	}
	if strings.Contains(a.Email, "@") {
		achieved += 1.0
	}
	if strings.TrimSpace(a.Address) != "" {
		achieved += 0.5
	}
	if strings.TrimSpace(a.City) != "" {
		achieved += 0.5
	}
	if strings.TrimSpace(a.State) != "" {
		achieved += 0.5
	}
	if strings.TrimSpace(a.ZipCode) != "" {
		achieved += 0.5
	}
	if a.AnnualRevenue > 0 {
		achieved += 1.0
	}

	return achieved / possible
}
