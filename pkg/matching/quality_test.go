package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirrorlake/unify/pkg/models"
)

func TestQualityScorer_ContactQuality(t *testing.T) {
	scorer := NewQualityScorer()

	t.Run("fully populated", func(t *testing.T) {
		c := &models.ContactRecord{
			FirstName:  "John",
			LastName:   "Smith",
			Email:      "john@acme.com",
			Phone:      "555-123-4567",
			JobTitle:   "Engineer",
			Department: "R&D",
		}
		assert.InDelta(t, 1.0, scorer.ContactQuality(c), 0.001)
	})

	t.Run("empty record", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.ContactQuality(&models.ContactRecord{}))
	})

	t.Run("email without at sign earns nothing", func(t *testing.T) {
		c := &models.ContactRecord{Email: "not-an-email"}
		assert.Equal(t, 0.0, scorer.ContactQuality(c))
	})

	t.Run("short phone earns nothing", func(t *testing.T) {
		c := &models.ContactRecord{Phone: "555-1234"}
		assert.Equal(t, 0.0, scorer.ContactQuality(c))
	})

	t.Run("department weighs half", func(t *testing.T) {
		c := &models.ContactRecord{Department: "Sales"}
		assert.InDelta(t, 0.5/5.5, scorer.ContactQuality(c), 0.001)
	})
}

func TestQualityScorer_AccountQuality(t *testing.T) {
	scorer := NewQualityScorer()

	t.Run("fully populated", func(t *testing.T) {
		a := &models.AccountRecord{
			AccountName:   "Acme Corp",
			AccountType:   "Customer",
			Phone:         "555-123-4567",
			Email:         "info@acme.com",
			Address:       "123 Main St",
			City:          "Chicago",
			State:         "IL",
			ZipCode:       "60601",
			AnnualRevenue: 5_000_000,
		}
		assert.InDelta(t, 1.0, scorer.AccountQuality(a), 0.001)
	})

	t.Run("empty record", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.AccountQuality(&models.AccountRecord{}))
	})

	t.Run("zero revenue earns nothing", func(t *testing.T) {
		a := &models.AccountRecord{AccountName: "Acme"}
		assert.InDelta(t, 1.0/7.0, scorer.AccountQuality(a), 0.001)
	})

	t.Run("address components weigh half each", func(t *testing.T) {
		a := &models.AccountRecord{Address: "123 Main St", City: "Chicago"}
		assert.InDelta(t, 1.0/7.0, scorer.AccountQuality(a), 0.001)
	})
}
