package matching

import (
	"strings"

	"github.com/mirrorlake/unify/pkg/normalizers"
)

// FieldSimilarity scores individual record fields in [0, 1]. A score of
// 1.0 means the two values are equivalent for identity purposes. Missing
// or malformed input always degrades to a conservative score, never an
// error.
type FieldSimilarity struct {
	scorer         *Scorer
	businessAbbrev normalizers.AbbreviationMap
	cityAbbrev     normalizers.AbbreviationMap
	nicknames      map[string][]string
}

// FieldSimilarityConfig allows the abbreviation and nickname tables to be
// supplied externally. Nil fields fall back to the built-in tables.
type FieldSimilarityConfig struct {
	BusinessAbbreviations normalizers.AbbreviationMap
	CityAbbreviations     normalizers.AbbreviationMap
	Nicknames             map[string][]string
}

// NewFieldSimilarity creates a FieldSimilarity with the given tables.
func NewFieldSimilarity(cfg FieldSimilarityConfig) *FieldSimilarity {
	if cfg.BusinessAbbreviations == nil {
		cfg.BusinessAbbreviations = normalizers.BusinessAbbreviations()
	}
	if cfg.CityAbbreviations == nil {
		cfg.CityAbbreviations = normalizers.CityAbbreviations()
	}
	if cfg.Nicknames == nil {
		cfg.Nicknames = DefaultNicknames()
	}
	return &FieldSimilarity{
		scorer:         NewScorer(),
		businessAbbrev: cfg.BusinessAbbreviations,
		cityAbbrev:     cfg.CityAbbreviations,
		nicknames:      cfg.Nicknames,
	}
}

// Name scores business or person names. Exact after normalization wins
// outright; exact after abbreviation rewriting scores 0.95; otherwise the
// maximum of several edit-distance metrics. Taking the maximum favors
// recall, the business rule engine applies the precision gate downstream.
func (f *FieldSimilarity) Name(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.Normalize(a)
	normB := normalizers.Normalize(b)
	if normA == normB {
		return 1.0
	}

	normA = normalizers.ApplyAbbreviations(normA, f.businessAbbrev)
	normB = normalizers.ApplyAbbreviations(normB, f.businessAbbrev)
	if normA == normB {
		return 0.95
	}

	simple := f.scorer.Ratio(normA, normB)
	partial := f.scorer.PartialRatio(normA, normB)
	tokenSort := f.scorer.TokenSortRatio(normA, normB)
	tokenSet := f.scorer.TokenSetRatio(normA, normB)

	// Blend emphasizes the token metrics, which handle reordered names.
	blended := simple*0.2 + partial*0.2 + tokenSort*0.3 + tokenSet*0.3

	return maxFloat(simple, partial, tokenSort, tokenSet, blended)
}

// FirstName scores given names, honoring the nickname table ("michael"
// vs "mike") and single-initial prefixes ("j" vs "john").
func (f *FieldSimilarity) FirstName(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.Normalize(a)
	normB := normalizers.Normalize(b)
	if normA == normB {
		return 1.0
	}

	for base, variants := range f.nicknames {
		if (normA == base && containsString(variants, normB)) ||
			(normB == base && containsString(variants, normA)) {
			return 0.9
		}
		if containsString(variants, normA) && containsString(variants, normB) {
			return 0.85
		}
	}

	if isInitialOf(normA, normB) || isInitialOf(normB, normA) {
		return 0.9
	}

	return maxFloat(f.scorer.Ratio(normA, normB), f.scorer.PartialRatio(normA, normB))
}

// LastName scores family names: ratio, best-substring, and the single
// initial prefix case.
func (f *FieldSimilarity) LastName(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.Normalize(a)
	normB := normalizers.Normalize(b)
	if normA == normB {
		return 1.0
	}

	if isInitialOf(normA, normB) || isInitialOf(normB, normA) {
		return 0.9
	}

	return maxFloat(f.scorer.Ratio(normA, normB), f.scorer.PartialRatio(normA, normB))
}

// ContactName scores a full contact name as the equal-weighted average of
// the first and last name similarities. All four parts must be present.
func (f *FieldSimilarity) ContactName(firstA, lastA, firstB, lastB string) float64 {
	if firstA == "" || lastA == "" || firstB == "" || lastB == "" {
		return 0.0
	}
	return (f.FirstName(firstA, firstB) + f.LastName(lastA, lastB)) / 2.0
}

// Phone scores phone numbers on digit strings. Containment covers
// extension differences, last-10 equality covers country-code prefixes.
func (f *FieldSimilarity) Phone(a, b string) float64 {
	digitsA := normalizers.DigitsOnly(a)
	digitsB := normalizers.DigitsOnly(b)
	if digitsA == "" || digitsB == "" {
		return 0.0
	}

	if digitsA == digitsB {
		return 1.0
	}

	if strings.Contains(digitsA, digitsB) || strings.Contains(digitsB, digitsA) {
		return 0.9
	}

	if len(digitsA) >= 10 && len(digitsB) >= 10 {
		lastA := digitsA[len(digitsA)-10:]
		lastB := digitsB[len(digitsB)-10:]
		if lastA == lastB {
			return 0.95
		}
		// Scale down near-miss scores, phone digits rarely differ by accident.
		if sim := f.scorer.Ratio(lastA, lastB); sim > 0.8 {
			return sim * 0.8
		}
	}

	return f.scorer.Ratio(digitsA, digitsB)
}

// Email scores addresses with the domain weighted over the local part.
// Input without a single @ falls back to a raw edit ratio.
func (f *FieldSimilarity) Email(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	lowerA := strings.ToLower(strings.TrimSpace(a))
	lowerB := strings.ToLower(strings.TrimSpace(b))
	if lowerA == lowerB {
		return 1.0
	}

	partsA := strings.Split(lowerA, "@")
	partsB := strings.Split(lowerB, "@")
	if len(partsA) != 2 || len(partsB) != 2 {
		return f.scorer.Ratio(lowerA, lowerB)
	}

	domainSim := f.scorer.Ratio(partsA[1], partsB[1])
	localSim := f.scorer.Ratio(partsA[0], partsB[0])

	return domainSim*0.6 + localSim*0.4
}

// Address scores street addresses with the business abbreviation table.
func (f *FieldSimilarity) Address(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.Normalize(a)
	normB := normalizers.Normalize(b)
	if normA == normB {
		return 1.0
	}

	normA = normalizers.ApplyAbbreviations(normA, f.businessAbbrev)
	normB = normalizers.ApplyAbbreviations(normB, f.businessAbbrev)
	if normA == normB {
		return 0.95
	}

	return maxFloat(
		f.scorer.Ratio(normA, normB),
		f.scorer.TokenSortRatio(normA, normB),
		f.scorer.TokenSetRatio(normA, normB),
		f.scorer.PartialRatio(normA, normB),
	)
}

// City scores city names with the city nickname table.
func (f *FieldSimilarity) City(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.Normalize(a)
	normB := normalizers.Normalize(b)
	if normA == normB {
		return 1.0
	}

	normA = normalizers.ApplyAbbreviations(normA, f.cityAbbrev)
	normB = normalizers.ApplyAbbreviations(normB, f.cityAbbrev)
	if normA == normB {
		return 0.95
	}

	return f.scorer.Ratio(normA, normB)
}

// EnterpriseID is the sole account matching criterion: binary equality on
// the trimmed identifier, no partial credit.
func (f *FieldSimilarity) EnterpriseID(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	return 0.0
}

// Website scores web addresses on their domains after stripping scheme
// and www.
func (f *FieldSimilarity) Website(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := normalizers.NormalizeWebsite(a)
	normB := normalizers.NormalizeWebsite(b)
	if normA == normB {
		return 1.0
	}

	domainA := strings.SplitN(normA, "/", 2)[0]
	domainB := strings.SplitN(normB, "/", 2)[0]
	if domainA == domainB {
		return 0.95
	}

	if strings.HasSuffix(domainA, domainB) || strings.HasSuffix(domainB, domainA) {
		return 0.9
	}

	return f.scorer.Ratio(domainA, domainB)
}

// DefaultNicknames returns the built-in given-name variant table.
func DefaultNicknames() map[string][]string {
	return map[string][]string{
		"john":        {"jon", "johnny", "johnathan", "jonathan"},
		"michael":     {"mike", "micheal", "mick", "mickey"},
		"david":       {"dave", "davey", "davy"},
		"robert":      {"rob", "bob", "bobby", "robbie"},
		"james":       {"jim", "jimmy", "jamie"},
		"william":     {"bill", "will", "billy", "willy"},
		"richard":     {"rick", "rich", "dick", "ricky"},
		"charles":     {"chuck", "charlie", "charley"},
		"thomas":      {"tom", "tommy", "thom"},
		"christopher": {"chris", "cristopher", "kristopher"},
		"daniel":      {"dan", "danny", "dane"},
		"matthew":     {"matt", "matty", "mathew"},
		"anthony":     {"tony", "antony", "anton"},
		"mark":        {"marc", "marcus", "marco"},
		"donald":      {"don", "donny", "donal"},
		"steven":      {"steve", "stevie", "stephen"},
		"andrew":      {"andy", "andre", "drew"},
		"joshua":      {"josh", "josiah"},
		"kenneth":     {"ken", "kenny", "kent"},
		"mary":        {"marie", "maria"},
		"patricia":    {"pat", "patty", "tricia"},
		"jennifer":    {"jen", "jenny", "jenn"},
		"elizabeth":   {"liz", "beth", "betty", "lizzie"},
		"barbara":     {"barb", "barbie"},
		"susan":       {"sue", "suzie", "susie"},
		"jessica":     {"jess", "jessie"},
		"sarah":       {"sara", "sally"},
		"karen":       {"karin", "karyn"},
		"helen":       {"helena", "lena"},
		"sandra":      {"sandy", "sandi"},
		"carol":       {"caroline", "carrie"},
		"sharon":      {"shari", "sherry"},
		"kimberly":    {"kim", "kimmy"},
		"deborah":     {"deb", "debbie"},
		"dorothy":     {"dot", "dottie"},
		"laura":       {"laurie", "lora"},
	}
}

// isInitialOf reports whether short is a single letter that prefixes full.
func isInitialOf(short, full string) bool {
	return len(short) == 1 && strings.HasPrefix(full, short)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func maxFloat(values ...float64) float64 {
	best := 0.0
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}
