package audit

import (
	"math"
	"strings"
)

// maxDerivedIssues caps the candidate list at the first N checks in
// iteration order; there is no prioritization beyond that.
const maxDerivedIssues = 50

// issueScoreCutoff is the sub-score below which a check becomes an issue
const issueScoreCutoff = 0.90

// Check is one named audit check within a scoring report
type Check struct {
	ID           string
	Title        string
	Description  string
	Score        *float64 // 0-1 sub-score; nil when the check is informational
	NumericValue *float64 // Observed measurement, when the check reports one
}

// Report is a lighthouse-style scoring result: category scores in 0-1
// plus a list of named checks with 0-1 sub-scores.
type Report struct {
	Performance   float64
	Accessibility float64
	BestPractices float64
	SEO           float64
	Checks        []Check
}

// CategoryScore converts a 0-1 category score to a rounded 0-100 integer
func CategoryScore(raw float64) int {
	return int(math.Round(raw * 100))
}

// OverallScore is the unweighted arithmetic mean of the four rounded
// category scores, rounded.
func (r *Report) OverallScore() int {
	sum := CategoryScore(r.Performance) +
		CategoryScore(r.Accessibility) +
		CategoryScore(r.BestPractices) +
		CategoryScore(r.SEO)
	return int(math.Round(float64(sum) / 4))
}

// IssueDraft is a derived issue candidate not yet persisted
type IssueDraft struct {
	Code           string
	Severity       Severity
	Category       Category
	Description    string
	MetricValue    *float64
	Threshold      *float64
	Recommendation string
}

// DeriveIssues turns failing checks into issue drafts. A check qualifies
// when its sub-score is below 0.90. When seoOnly is set, candidates are
// restricted to checks whose identifier contains "meta", "seo", or "link"
// and the category is fixed to seo. The result is capped at the first 50
// candidates in iteration order.
func DeriveIssues(checks []Check, seoOnly bool) []IssueDraft {
	drafts := make([]IssueDraft, 0, len(checks))
	for _, check := range checks {
		if len(drafts) >= maxDerivedIssues {
			break
		}
		if check.Score == nil || *check.Score >= issueScoreCutoff {
			continue
		}
		if seoOnly && !isSeoCheck(check.ID) {
			continue
		}

		category := CategoryForCheckID(check.ID)
		if seoOnly {
			category = CategorySEO
		}

		draft := IssueDraft{
			Code:           codeForCheckID(check.ID),
			Severity:       SeverityForScore(*check.Score * 100),
			Category:       category,
			Description:    check.Title,
			Recommendation: check.Description,
		}
		if check.NumericValue != nil {
			value := *check.NumericValue
			threshold := value * 1.1
			draft.MetricValue = &value
			draft.Threshold = &threshold
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

func isSeoCheck(checkID string) bool {
	id := strings.ToLower(checkID)
	return strings.Contains(id, "meta") || strings.Contains(id, "seo") || strings.Contains(id, "link")
}

func codeForCheckID(checkID string) string {
	return strings.ToUpper(strings.ReplaceAll(checkID, "-", "_"))
}
