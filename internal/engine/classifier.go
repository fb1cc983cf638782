package engine

import "strings"

// Bucket is a report-level source category. Buckets are not mutually
// exclusive: a category id may carry several tags (air travel counts as
// both transport and travel in certification reports).
type Bucket string

const (
	BucketTransport     Bucket = "transport"
	BucketEnergy        Bucket = "energy"
	BucketTravel        Bucket = "travel"
	BucketAccommodation Bucket = "accommodation"
	BucketCatering      Bucket = "catering"
	BucketMaterials     Bucket = "materials"
	BucketWaste         Bucket = "waste"
	BucketUnclassified  Bucket = "unclassified"
)

// Classification is the scope and bucket tagging for a category id.
type Classification struct {
	Scope Scope
	// Buckets lists every matching bucket in rule order. Never empty:
	// ids matching no rule carry the single BucketUnclassified tag.
	Buckets []Bucket
}

// Primary returns the first (highest-precedence) bucket tag.
func (c Classification) Primary() Bucket {
	return c.Buckets[0]
}

// Has reports whether the classification carries the given bucket tag.
func (c Classification) Has(b Bucket) bool {
	for _, tag := range c.Buckets {
		if tag == b {
			return true
		}
	}
	return false
}

// bucketRule matches a category id to a bucket by substring. Rules are
// evaluated in declaration order; every matching rule contributes a tag.
type bucketRule struct {
	bucket     Bucket
	substrings []string
}

// bucketRules is the fixed, ordered bucket lookup table. Order matters:
// the first matching rule supplies the primary bucket, so transport
// outranks travel for ids matching both.
var bucketRules = []bucketRule{
	{BucketTransport, []string{"transport", "vehicle", "shipping", "freight"}},
	{BucketEnergy, []string{"energy", "electricity", "power", "generator", "heating"}},
	{BucketTravel, []string{"travel", "flight", "rail", "commut"}},
	{BucketAccommodation, []string{"accommodation", "hotel", "lodging"}},
	{BucketCatering, []string{"catering", "food", "meal", "craft-service"}},
	{BucketMaterials, []string{"material", "construction", "set-build", "costume", "props"}},
	{BucketWaste, []string{"waste", "disposal", "recycling", "landfill"}},
}

// scopeRule maps substrings to a GHG scope. Evaluated after the explicit
// scopeN prefix check, in declaration order, first match wins.
type scopeRule struct {
	scope      Scope
	substrings []string
}

var scopeRules = []scopeRule{
	{Scope1, []string{"fuel", "vehicle", "generator", "gas", "diesel", "petrol"}},
	{Scope2, []string{"electricity", "energy", "power", "heating", "cooling"}},
	{Scope3, []string{
		"transport", "travel", "flight", "rail", "commut", "shipping", "freight",
		"accommodation", "hotel", "lodging",
		"catering", "food", "meal",
		"material", "construction", "costume", "props",
		"waste", "disposal", "recycling",
	}},
}

// Classify maps a category id to its emission scope and bucket tags.
//
// Classification is a pure, total function: it never fails, and ids
// matching no rule classify to ScopeUnknown with the unclassified bucket.
// Matching is case-insensitive. Scope resolution checks an explicit
// "scope1"/"scope2"/"scope3" prefix first, then the substring rules in
// fixed order (first match wins). Bucket tagging collects every matching
// bucket rule in fixed order, so the same id always resolves to the same
// tag set with the same primary.
func Classify(categoryID string) Classification {
	id := strings.ToLower(strings.TrimSpace(categoryID))

	return Classification{
		Scope:   classifyScope(id),
		Buckets: classifyBuckets(id),
	}
}

func classifyScope(id string) Scope {
	switch {
	case strings.HasPrefix(id, "scope1"):
		return Scope1
	case strings.HasPrefix(id, "scope2"):
		return Scope2
	case strings.HasPrefix(id, "scope3"):
		return Scope3
	}

	for _, rule := range scopeRules {
		for _, sub := range rule.substrings {
			if strings.Contains(id, sub) {
				return rule.scope
			}
		}
	}
	return ScopeUnknown
}

func classifyBuckets(id string) []Bucket {
	var tags []Bucket
	for _, rule := range bucketRules {
		for _, sub := range rule.substrings {
			if strings.Contains(id, sub) {
				tags = append(tags, rule.bucket)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []Bucket{BucketUnclassified}
	}
	return tags
}

// SourceBuckets lists the named buckets in report order, excluding the
// unclassified fallback.
func SourceBuckets() []Bucket {
	return []Bucket{
		BucketTransport,
		BucketEnergy,
		BucketTravel,
		BucketAccommodation,
		BucketCatering,
		BucketMaterials,
		BucketWaste,
	}
}
