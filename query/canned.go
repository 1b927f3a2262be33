package query

// Canned holds a handful of named query strings, among them the
// high-confidence-concepts example. No endpoint or other package in
// this module runs them.
var Canned = struct {
	HighConfidenceConcepts string
	RecentMemories         string
	LowReliabilityRules    string
}{
	HighConfidenceConcepts: `CONCEPTS WHERE confidence_score > 0.9 ORDER BY confidence_score DESC LIMIT 10`,
	RecentMemories:         `MEMORIES ORDER BY created_at DESC LIMIT 20`,
	LowReliabilityRules:    `RULES WHERE confidence_score < 0.3 ORDER BY confidence_score ASC LIMIT 20`,
}
