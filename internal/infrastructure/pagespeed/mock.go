package pagespeed

import (
	"encoding/json"
	"math/rand"

	"github.com/sitepulse/backend/internal/domain/audit"
)

// Fixed issue catalogs keep mock audits plausible without any network
// dependency. Sub-scores are chosen so the derived severities span the
// threshold table.
var performanceCatalog = []audit.Check{
	{ID: "render-blocking-resources", Title: "Eliminate render-blocking resources", Description: "Resources are blocking the first paint of your page. Consider delivering critical JS/CSS inline.", Score: f(0.45), NumericValue: f(1180)},
	{ID: "unused-javascript", Title: "Reduce unused JavaScript", Description: "Remove unused JavaScript to reduce bytes consumed by network activity.", Score: f(0.62), NumericValue: f(87000)},
	{ID: "uses-optimized-images", Title: "Efficiently encode images", Description: "Optimized images load faster and consume less cellular data.", Score: f(0.78), NumericValue: f(43000)},
	{ID: "color-contrast-a11y", Title: "Background and foreground colors have sufficient contrast", Description: "Low-contrast text is difficult or impossible for many users to read.", Score: f(0.7)},
	{ID: "uses-best-practices-https", Title: "Uses HTTPS", Description: "All sites should be protected with HTTPS.", Score: f(0.85)},
	{ID: "meta-description", Title: "Document has a meta description", Description: "Meta descriptions may be included in search results to concisely summarize page content.", Score: f(0.55)},
}

var seoCatalog = []audit.Check{
	{ID: "meta-description", Title: "Document has a meta description", Description: "Meta descriptions may be included in search results to concisely summarize page content.", Score: f(0.4)},
	{ID: "document-title-seo", Title: "Document has a title element", Description: "The title gives screen reader users an overview of the page.", Score: f(0.65)},
	{ID: "link-text", Title: "Links have descriptive text", Description: "Descriptive link text helps search engines understand your content.", Score: f(0.8)},
	{ID: "crawlable-anchors-seo", Title: "Links are crawlable", Description: "Search engines may use href attributes on links to crawl websites.", Score: f(0.72)},
}

func f(v float64) *float64 { return &v }

// mock returns synthetic scoring results with category scores drawn from
// [0.70, 1.0) and the fixed issue catalog for the audit type.
func (s *Scorer) mock(auditType audit.Type, targetURL string) *Outcome {
	seoOnly := auditType == audit.TypeSEO

	catalog := performanceCatalog
	if seoOnly {
		catalog = seoCatalog
	}

	report := &audit.Report{
		Performance:   mockCategoryScore(),
		Accessibility: mockCategoryScore(),
		BestPractices: mockCategoryScore(),
		SEO:           mockCategoryScore(),
		Checks:        catalog,
	}

	raw, _ := json.Marshal(map[string]any{
		"mock":       true,
		"target_url": targetURL,
		"categories": map[string]float64{
			"performance":    report.Performance,
			"accessibility":  report.Accessibility,
			"best-practices": report.BestPractices,
			"seo":            report.SEO,
		},
	})

	return &Outcome{
		Report:  report,
		Raw:     raw,
		Runner:  audit.RunnerMock,
		Issues:  audit.DeriveIssues(catalog, seoOnly),
		SeoOnly: seoOnly,
	}
}

func mockCategoryScore() float64 {
	return 0.70 + rand.Float64()*0.30
}
