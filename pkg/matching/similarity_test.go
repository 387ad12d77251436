package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newFields() *FieldSimilarity {
	return NewFieldSimilarity(FieldSimilarityConfig{})
}

func TestFieldSimilarity_Name(t *testing.T) {
	fields := newFields()

	t.Run("exact after normalization", func(t *testing.T) {
		assert.Equal(t, 1.0, fields.Name("Acme, Inc.", "acme inc"))
	})

	t.Run("abbreviation equivalence", func(t *testing.T) {
		assert.Equal(t, 0.95, fields.Name("Acme Corporation", "Acme Corp"))
	})

	t.Run("reordered tokens score high", func(t *testing.T) {
		assert.GreaterOrEqual(t, fields.Name("Smith John", "John Smith"), 0.9)
	})

	t.Run("either side empty", func(t *testing.T) {
		assert.Equal(t, 0.0, fields.Name("", "Acme"))
		assert.Equal(t, 0.0, fields.Name("Acme", ""))
	})

	t.Run("symmetric and bounded", func(t *testing.T) {
		a, b := "Globex Corporation", "Globex Intl Corp"
		assert.Equal(t, fields.Name(a, b), fields.Name(b, a))
		assert.LessOrEqual(t, fields.Name(a, b), 1.0)
		assert.GreaterOrEqual(t, fields.Name(a, b), 0.0)
	})
}

func TestFieldSimilarity_FirstName(t *testing.T) {
	fields := newFields()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"exact", "John", "john", 1.0},
		{"base to variant", "Michael", "Mike", 0.9},
		{"variant to variant", "Mike", "Mickey", 0.85},
		{"single initial", "J", "John", 0.9},
		{"missing side", "", "John", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.FirstName(tt.a, tt.b))
			assert.Equal(t, tt.want, fields.FirstName(tt.b, tt.a))
		})
	}

	t.Run("typo falls back to edit distance", func(t *testing.T) {
		score := fields.FirstName("Jonathan", "Johnathan")
		assert.Greater(t, score, 0.8)
		assert.Less(t, score, 1.0)
	})
}

func TestFieldSimilarity_Phone(t *testing.T) {
	fields := newFields()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"formatting ignored", "(555) 123-4567", "555.123.4567", 1.0},
		{"country code prefix containment", "15551234567", "5551234567", 0.9},
		{"empty side", "", "5551234567", 0.0},
		{"non numeric side", "n/a", "5551234567", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.Phone(tt.a, tt.b))
		})
	}

	t.Run("same last ten digits", func(t *testing.T) {
		// different long prefixes, identical subscriber number
		assert.Equal(t, 0.95, fields.Phone("0445551234567", "0995551234567"))
	})
}

func TestFieldSimilarity_Email(t *testing.T) {
	fields := newFields()

	t.Run("case insensitive exact", func(t *testing.T) {
		assert.Equal(t, 1.0, fields.Email("John.Doe@Acme.com", "john.doe@acme.com"))
	})

	t.Run("same domain different local", func(t *testing.T) {
		score := fields.Email("jdoe@acme.com", "john.doe@acme.com")
		assert.Greater(t, score, 0.6)
		assert.Less(t, score, 1.0)
	})

	t.Run("malformed address falls back to ratio", func(t *testing.T) {
		score := fields.Email("not-an-email", "not-an-emaiL")
		assert.Equal(t, 1.0, score)
	})

	t.Run("empty side", func(t *testing.T) {
		assert.Equal(t, 0.0, fields.Email("", "a@b.com"))
	})
}

func TestFieldSimilarity_Address(t *testing.T) {
	fields := newFields()

	t.Run("street abbreviation equivalence", func(t *testing.T) {
		assert.Equal(t, 0.95, fields.Address("123 Main Street", "123 Main St"))
	})

	t.Run("punctuation ignored", func(t *testing.T) {
		assert.Equal(t, 1.0, fields.Address("123 Main St.", "123 Main St"))
	})
}

func TestFieldSimilarity_City(t *testing.T) {
	fields := newFields()

	t.Run("exact", func(t *testing.T) {
		assert.Equal(t, 1.0, fields.City("Chicago", "chicago"))
	})

	t.Run("city nickname", func(t *testing.T) {
		assert.Equal(t, 0.95, fields.City("New York", "NYC"))
	})
}

func TestFieldSimilarity_EnterpriseID(t *testing.T) {
	fields := newFields()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"exact", "ENT-001", "ENT-001", 1.0},
		{"trimmed exact", " ENT-001 ", "ENT-001", 1.0},
		{"different", "ENT-001", "ENT-002", 0.0},
		{"near miss gets no credit", "ENT-001", "ENT-0001", 0.0},
		{"empty side", "", "ENT-001", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.EnterpriseID(tt.a, tt.b))
		})
	}
}

func TestFieldSimilarity_Website(t *testing.T) {
	fields := newFields()

	t.Run("scheme and www stripped", func(t *testing.T) {
		assert.Equal(t, 1.0, fields.Website("https://www.acme.com", "acme.com"))
	})

	t.Run("path ignored at domain level", func(t *testing.T) {
		assert.Equal(t, 0.95, fields.Website("acme.com/about", "acme.com/contact"))
	})

	t.Run("subdomain", func(t *testing.T) {
		assert.Equal(t, 0.9, fields.Website("shop.acme.com", "acme.com"))
	})
}
