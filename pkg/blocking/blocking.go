// Package blocking derives cheap deterministic keys from records so the
// resolver can skip pairs that cannot reach the acceptance threshold.
// Keys are chosen so that any pair acceptable under the rules scoring
// strategy shares at least one key; blocking changes cost, never output.
package blocking

import (
	"strings"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/normalizers"
)

// ContactKeys returns the blocking keys for a contact. A contact with no
// keys has no exact-match field populated and can never clear the
// acceptance threshold.
func ContactKeys(c *models.ContactRecord) []string {
	var keys []string
	if lastName := normalizers.Normalize(c.LastName); lastName != "" {
		keys = append(keys, "ln:"+lastName)
	}
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		keys = append(keys, "em:"+email)
	}
	if digits := normalizers.DigitsOnly(c.Phone); digits != "" {
		keys = append(keys, "ph:"+digits)
	}
	return keys
}

// AccountKeys returns the blocking keys for an account. Accounts match
// on the enterprise id alone, so that is the only key.
func AccountKeys(a *models.AccountRecord) []string {
	if id := strings.TrimSpace(a.EnterpriseID); id != "" {
		return []string{"eid:" + id}
	}
	return nil
}

// Index holds the key sets for a batch, positionally aligned with the
// record slice it was built from.
type Index struct {
	keys []map[string]struct{}
}

// NewIndex builds an Index from per-record key slices.
func NewIndex(recordKeys [][]string) *Index {
	keys := make([]map[string]struct{}, len(recordKeys))
	for i, rk := range recordKeys {
		set := make(map[string]struct{}, len(rk))
		for _, k := range rk {
			set[k] = struct{}{}
		}
		keys[i] = set
	}
	return &Index{keys: keys}
}

// NewContactIndex builds an Index over a contact batch.
func NewContactIndex(records []*models.ContactRecord) *Index {
	recordKeys := make([][]string, len(records))
	for i, r := range records {
		recordKeys[i] = ContactKeys(r)
	}
	return NewIndex(recordKeys)
}

// NewAccountIndex builds an Index over an account batch.
func NewAccountIndex(records []*models.AccountRecord) *Index {
	recordKeys := make([][]string, len(records))
	for i, r := range records {
		recordKeys[i] = AccountKeys(r)
	}
	return NewIndex(recordKeys)
}

// ShouldCompare reports whether the records at positions i and j share a
// blocking key.
func (idx *Index) ShouldCompare(i, j int) bool {
	a, b := idx.keys[i], idx.keys[j]
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
