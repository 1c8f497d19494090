package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/ai"
	"github.com/sitepulse/backend/internal/infrastructure/config"
)

// FixOrchestrator drafts AI-generated fixes for audit issues. Both
// configured providers are called concurrently with the same prompt, and
// when both answer, a Groq arbitration call picks the better draft. The
// operation always persists some fix once the key check has passed: a
// single surviving draft is used directly, and when both providers fail a
// generic fallback fix is stored with the triggering error embedded.
type FixOrchestrator struct {
	issueRepo   audit.IssueRepository
	auditRepo   audit.AuditRepository
	projectRepo project.ProjectRepository
	fixRepo     audit.FixRepository
	meter       *billingapp.UsageMeter
	credentials *CredentialResolver
	gemini      ai.Completer
	groq        ai.Completer
	aiCfg       config.AIConfig
	metrics     FixMetricsRecorder
	logger      *zap.Logger
}

// FixMetricsRecorder counts fix generation events. Must be non-blocking.
type FixMetricsRecorder interface {
	RecordFixGenerated(ctx context.Context, provider string)
	RecordQuotaRefusal(ctx context.Context, metricKey string)
}

// NewFixOrchestrator creates a fix orchestrator
func NewFixOrchestrator(
	issueRepo audit.IssueRepository,
	auditRepo audit.AuditRepository,
	projectRepo project.ProjectRepository,
	fixRepo audit.FixRepository,
	meter *billingapp.UsageMeter,
	credentials *CredentialResolver,
	gemini ai.Completer,
	groq ai.Completer,
	aiCfg config.AIConfig,
	logger *zap.Logger,
) *FixOrchestrator {
	return &FixOrchestrator{
		issueRepo:   issueRepo,
		auditRepo:   auditRepo,
		projectRepo: projectRepo,
		fixRepo:     fixRepo,
		meter:       meter,
		credentials: credentials,
		gemini:      gemini,
		groq:        groq,
		aiCfg:       aiCfg,
		logger:      logger.Named("aifix"),
	}
}

// SetMetrics attaches a metrics recorder. May be left unset.
func (o *FixOrchestrator) SetMetrics(metrics FixMetricsRecorder) {
	o.metrics = metrics
}

type providerResult struct {
	draft audit.FixDraft
	err   error
}

// arbitrationVerdict is the JSON structure the arbitration call must answer with
type arbitrationVerdict struct {
	Winner    string            `json:"winner"`
	Scores    map[string]int    `json:"scores"`
	Strengths map[string]string `json:"strengths"`
	Rationale string            `json:"rationale"`
}

// GenerateAiFix drafts and persists a fix for the issue. provider names the
// family the caller-supplied apiKey belongs to ("gemini" or "groq"); the
// other family's key must be resolvable from the tenant's stored
// credentials or the global configuration, since comparison mode always
// needs both. requestedBy attributes the fix to a user when known.
func (o *FixOrchestrator) GenerateAiFix(ctx context.Context, issueID uuid.UUID, provider, apiKey string, requestedBy *uuid.UUID) (*audit.Fix, error) {
	issue, err := o.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NewNotFoundError("Issue")
	}

	parentAudit, err := o.auditRepo.FindByID(ctx, issue.AuditID)
	if err != nil {
		return nil, err
	}
	if parentAudit == nil {
		return nil, shared.NewNotFoundError("Audit")
	}

	proj, err := o.projectRepo.FindByID(ctx, parentAudit.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, shared.NewNotFoundError("Project")
	}
	tenantID := proj.TenantID

	geminiKey, err := o.resolveKey(ctx, tenantID, ProviderGemini, provider, apiKey, o.aiCfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	groqKey, err := o.resolveKey(ctx, tenantID, ProviderGroq, provider, apiKey, o.aiCfg.GroqAPIKey)
	if err != nil {
		return nil, err
	}
	if geminiKey == "" || groqKey == "" {
		return nil, shared.NewInvalidInputError("Both Gemini and Groq API keys are required for comparison mode")
	}

	if err := o.meter.Increment(ctx, tenantID, billing.MetricAiFixes, 1); err != nil {
		var domainErr *shared.DomainError
		if o.metrics != nil && errors.As(err, &domainErr) && domainErr.Code == shared.ErrCodeQuotaExceeded {
			o.metrics.RecordQuotaRefusal(ctx, billing.MetricAiFixes)
		}
		return nil, err
	}

	prompt := buildFixPrompt(issue)

	var wg sync.WaitGroup
	var geminiRes, groqRes providerResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		geminiRes = o.callProvider(ctx, o.gemini, prompt, geminiKey)
	}()
	go func() {
		defer wg.Done()
		groqRes = o.callProvider(ctx, o.groq, prompt, groqKey)
	}()
	wg.Wait()

	content := o.resolveDrafts(ctx, issue, geminiRes, groqRes, groqKey)
	fixProvider := audit.FixProviderGroq
	if content.Comparison != nil && content.Comparison.Winner == o.gemini.Name() {
		fixProvider = audit.FixProviderGemini
	}
	if geminiRes.err == nil && groqRes.err != nil {
		fixProvider = audit.FixProviderGemini
	}

	fix, err := audit.NewFix(issue.ID, fixProvider, content, requestedBy)
	if err != nil {
		return nil, err
	}
	if err := o.fixRepo.Save(ctx, fix); err != nil {
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.RecordFixGenerated(ctx, fix.Provider.String())
	}
	o.logger.Info("AI fix generated",
		zap.String("issue_id", issue.ID.String()),
		zap.String("provider", fix.Provider.String()),
		zap.Bool("gemini_ok", geminiRes.err == nil),
		zap.Bool("groq_ok", groqRes.err == nil))
	return fix, nil
}

// resolveKey picks the key for one provider family: the caller-supplied key
// when it was issued for this family, then the tenant's stored credential,
// then the globally configured key.
func (o *FixOrchestrator) resolveKey(ctx context.Context, tenantID uuid.UUID, family, requestedProvider, callerKey, globalKey string) (string, error) {
	if requestedProvider == family && callerKey != "" {
		return callerKey, nil
	}
	if o.credentials != nil {
		key, err := o.credentials.Resolve(ctx, tenantID, family)
		if err != nil {
			return "", err
		}
		if key != "" {
			return key, nil
		}
	}
	return globalKey, nil
}

func (o *FixOrchestrator) callProvider(ctx context.Context, completer ai.Completer, prompt, apiKey string) providerResult {
	text, err := completer.Complete(ctx, prompt, apiKey)
	if err != nil {
		o.logger.Warn("Provider draft call failed",
			zap.String("provider", completer.Name()),
			zap.Error(err))
		return providerResult{err: err}
	}
	return providerResult{draft: parseDraft(text)}
}

// resolveDrafts turns the two provider results into the fix content to
// persist. Never returns an error: the both-failed case falls back to a
// generic fix carrying the triggering error text.
func (o *FixOrchestrator) resolveDrafts(ctx context.Context, issue *audit.Issue, geminiRes, groqRes providerResult, groqKey string) audit.FixContent {
	geminiTag := o.gemini.Name()
	groqTag := o.groq.Name()

	switch {
	case geminiRes.err != nil && groqRes.err != nil:
		return audit.FixContent{
			Fix: fmt.Sprintf("Review the %s finding manually: %s",
				issue.Category.String(), issue.Description),
			Impact: "Automatic fix generation was unavailable",
			Note: fmt.Sprintf("All AI providers failed (%s: %v; %s: %v)",
				geminiTag, geminiRes.err, groqTag, groqRes.err),
		}

	case geminiRes.err != nil:
		content := audit.FixContent{Fix: groqRes.draft.Fix, Impact: groqRes.draft.Impact}
		content.Note = fmt.Sprintf("%s draft unavailable: %v", geminiTag, geminiRes.err)
		return content

	case groqRes.err != nil:
		content := audit.FixContent{Fix: geminiRes.draft.Fix, Impact: geminiRes.draft.Impact}
		content.Note = fmt.Sprintf("%s draft unavailable: %v", groqTag, groqRes.err)
		return content
	}

	drafts := map[string]audit.FixDraft{
		geminiTag: geminiRes.draft,
		groqTag:   groqRes.draft,
	}
	comparison := o.arbitrate(ctx, issue, drafts, groqKey)

	chosen := groqRes.draft
	if comparison.Winner == geminiTag {
		chosen = geminiRes.draft
	}
	return audit.FixContent{
		Fix:        chosen.Fix,
		Impact:     chosen.Impact,
		Drafts:     drafts,
		Comparison: comparison,
	}
}

// arbitrate asks the Groq provider to pick the better draft. Any failure
// (call or parse) defaults the winner to the Groq draft with ParseFailed set.
func (o *FixOrchestrator) arbitrate(ctx context.Context, issue *audit.Issue, drafts map[string]audit.FixDraft, groqKey string) *audit.Comparison {
	geminiTag := o.gemini.Name()
	groqTag := o.groq.Name()
	prompt := buildArbitrationPrompt(issue, geminiTag, drafts[geminiTag], groqTag, drafts[groqTag])

	text, err := o.groq.Complete(ctx, prompt, groqKey)
	if err != nil {
		o.logger.Warn("Arbitration call failed, defaulting to the Groq draft",
			zap.String("issue_id", issue.ID.String()),
			zap.Error(err))
		return &audit.Comparison{Winner: groqTag, ParseFailed: true}
	}

	var verdict arbitrationVerdict
	if err := json.Unmarshal([]byte(ai.StripCodeFences(text)), &verdict); err != nil ||
		(verdict.Winner != geminiTag && verdict.Winner != groqTag) {
		o.logger.Warn("Arbitration response could not be parsed, defaulting to the Groq draft",
			zap.String("issue_id", issue.ID.String()))
		return &audit.Comparison{Winner: groqTag, ParseFailed: true}
	}

	return &audit.Comparison{
		Winner:    verdict.Winner,
		Scores:    verdict.Scores,
		Strengths: verdict.Strengths,
		Rationale: verdict.Rationale,
	}
}

// parseDraft extracts a structured draft from the provider's answer. When
// the text is not the expected JSON object, the raw text becomes the fix
// body rather than failing the call.
func parseDraft(text string) audit.FixDraft {
	stripped := ai.StripCodeFences(text)
	var draft audit.FixDraft
	if err := json.Unmarshal([]byte(stripped), &draft); err == nil && draft.Fix != "" {
		return draft
	}
	return audit.FixDraft{
		Fix:    stripped,
		Impact: "Not specified",
	}
}

func buildFixPrompt(issue *audit.Issue) string {
	var b strings.Builder
	b.WriteString("You are a web performance and SEO expert. Propose a concrete fix for the following website issue.\n\n")
	fmt.Fprintf(&b, "Issue code: %s\n", issue.Code)
	fmt.Fprintf(&b, "Category: %s\n", issue.Category)
	fmt.Fprintf(&b, "Severity: %s\n", issue.Severity)
	fmt.Fprintf(&b, "Description: %s\n", issue.Description)
	if issue.Recommendation != "" {
		fmt.Fprintf(&b, "Recommendation: %s\n", issue.Recommendation)
	}
	if issue.MetricValue != nil {
		fmt.Fprintf(&b, "Observed value: %.2f\n", *issue.MetricValue)
	}
	if issue.Threshold != nil {
		fmt.Fprintf(&b, "Target value: %.2f\n", *issue.Threshold)
	}
	b.WriteString("\nAnswer with a single JSON object of the form ")
	b.WriteString(`{"fix": "<concrete steps to apply>", "impact": "<expected improvement>"}`)
	b.WriteString(" and nothing else.")
	return b.String()
}

func buildArbitrationPrompt(issue *audit.Issue, tagA string, draftA audit.FixDraft, tagB string, draftB audit.FixDraft) string {
	var b strings.Builder
	b.WriteString("Two AI assistants proposed fixes for the same website issue. Judge which fix is better.\n\n")
	fmt.Fprintf(&b, "Issue: [%s] %s (%s, %s)\n\n", issue.Code, issue.Description, issue.Category, issue.Severity)
	fmt.Fprintf(&b, "Proposal %q:\nFix: %s\nImpact: %s\n\n", tagA, draftA.Fix, draftA.Impact)
	fmt.Fprintf(&b, "Proposal %q:\nFix: %s\nImpact: %s\n\n", tagB, draftB.Fix, draftB.Impact)
	b.WriteString("Answer with a single JSON object of the form ")
	fmt.Fprintf(&b, `{"winner": "%s"|"%s", "scores": {"%s": <0-100>, "%s": <0-100>}, "strengths": {"%s": "...", "%s": "..."}, "rationale": "..."}`,
		tagA, tagB, tagA, tagB, tagA, tagB)
	b.WriteString(" and nothing else.")
	return b.String()
}
