// Package score combines the analyzer results into a ReliabilityScore.
//
// score.go: Scorer fans the four analyzers out with errgroup, joins them and
// sums their component scores into a 0–100 total. Grade maps the total to a
// letter using the configured cutoffs (A/B/C/D inclusive, else F).
//
// recommend.go: an ordered list of rules, each a check over the combined
// result plus a message. Rules are evaluated in a fixed order and the first
// ten that fire become the recommendations.
package score
