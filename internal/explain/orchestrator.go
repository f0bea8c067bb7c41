// Package explain produces the combined response of the explain
// operation: deterministic tax numbers plus a retrieval-grounded model
// summary, degrading gracefully when retrieval or generation misbehaves.
package explain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"taxadvisor/internal/domain"
	"taxadvisor/internal/tax"
)

const maxQueryLen = 500

// UnconfiguredMessage is returned as the AI summary when no generation
// credential is configured. This is an expected mode, not an error.
const UnconfiguredMessage = "AI explanations are not configured. Set the generation API key to enable " +
	"document-grounded summaries. The tax figures in this response are computed deterministically and are complete."

// Request is the transport-agnostic input of the explain operation.
// Salary is a pointer so that "missing" is distinguishable from zero.
type Request struct {
	Salary     *float64           `json:"salary"`
	Deductions *RequestDeductions `json:"deductions,omitempty"`
	Query      string             `json:"query,omitempty"`
}

// RequestDeductions mirrors domain.DeductionSet with optional fields.
type RequestDeductions struct {
	Section80C float64 `json:"section80C,omitempty"`
	Section80D float64 `json:"section80D,omitempty"`
	HRA        float64 `json:"hra,omitempty"`
	Other      float64 `json:"other,omitempty"`
}

// ValidationError names the request fields that failed validation.
// Nothing downstream runs when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid field(s): " + strings.Join(e.Fields, ", ")
}

// Options tunes the orchestrator's generation policy.
type Options struct {
	// Models is the ordered fallback chain of candidate model IDs.
	Models []string
	// MaxAttemptsPerModel bounds retries of a single model; only
	// rate-limited attempts are retried.
	MaxAttemptsPerModel int
	// DefaultRetryDelay applies when a rate-limit signal carries no
	// usable retry hint.
	DefaultRetryDelay time.Duration
	TopK              int
}

// Orchestrator composes the tax engine, the retrieval client, the
// generative model and the notifier. All collaborators are injected;
// generator and notifier may be nil (unconfigured).
type Orchestrator struct {
	retriever domain.Retriever
	generator domain.Generator
	notifier  domain.Notifier
	opts      Options
	log       *zap.Logger

	// sleep and now are swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewOrchestrator(retriever domain.Retriever, generator domain.Generator, notifier domain.Notifier, opts Options, log *zap.Logger) *Orchestrator {
	if opts.MaxAttemptsPerModel <= 0 {
		opts.MaxAttemptsPerModel = 2
	}
	if opts.DefaultRetryDelay <= 0 {
		opts.DefaultRetryDelay = 10 * time.Second
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		notifier:  notifier,
		opts:      opts,
		log:       log,
		sleep:     sleepCtx,
		now:       time.Now,
	}
}

// Explain runs the full pipeline: validate, compute, retrieve, generate,
// assemble, notify. Retrieval and generation failures degrade the AI
// summary but never the deterministic numbers.
func (o *Orchestrator) Explain(ctx context.Context, req Request) (*domain.ExplanationResponse, error) {
	salary, deductions, err := validate(req)
	if err != nil {
		return nil, err
	}

	cmp := tax.CompareRegimes(salary, deductions)

	question := strings.TrimSpace(req.Query)
	if question == "" {
		question = synthesizeQuestion(salary)
	}

	chunks := o.retrieve(ctx, question)
	summary := o.generate(ctx, cmp, chunks, question)
	resp := o.assemble(cmp, chunks, summary)

	if o.notifier != nil {
		payload := domain.NotificationPayload{
			Verdict:        resp.Verdict,
			Savings:        resp.Savings,
			Recommendation: resp.Recommendation,
			Timestamp:      resp.Timestamp.Format(time.RFC3339),
		}
		// Detached: the response does not wait for delivery, and any
		// failure is logged inside the notifier, never propagated.
		go func() {
			if err := o.notifier.Notify(context.WithoutCancel(ctx), payload); err != nil {
				o.log.Warn("notification delivery failed", zap.Error(err))
			}
		}()
	}

	return resp, nil
}

func validate(req Request) (int64, domain.DeductionSet, error) {
	var bad []string
	if req.Salary == nil || *req.Salary <= 0 || math.IsNaN(*req.Salary) || math.IsInf(*req.Salary, 0) {
		bad = append(bad, "salary")
	}
	var d domain.DeductionSet
	if req.Deductions != nil {
		if req.Deductions.Section80C < 0 {
			bad = append(bad, "deductions.section80C")
		}
		if req.Deductions.Section80D < 0 {
			bad = append(bad, "deductions.section80D")
		}
		if req.Deductions.HRA < 0 {
			bad = append(bad, "deductions.hra")
		}
		if req.Deductions.Other < 0 {
			bad = append(bad, "deductions.other")
		}
		d = domain.DeductionSet{
			Section80C: int64(math.Round(req.Deductions.Section80C)),
			Section80D: int64(math.Round(req.Deductions.Section80D)),
			HRA:        int64(math.Round(req.Deductions.HRA)),
			Other:      int64(math.Round(req.Deductions.Other)),
		}
	}
	if len(req.Query) > maxQueryLen {
		bad = append(bad, "query")
	}
	if len(bad) > 0 {
		return 0, domain.DeductionSet{}, &ValidationError{Fields: bad}
	}
	return int64(math.Round(*req.Salary)), d, nil
}

// retrieve fetches the top-k chunks for the question. Any failure is
// logged and swallowed; the explanation proceeds without excerpts.
func (o *Orchestrator) retrieve(ctx context.Context, question string) []domain.RetrievedChunk {
	if o.retriever == nil {
		return nil
	}
	chunks, err := o.retriever.TopK(ctx, question, o.opts.TopK)
	if err != nil {
		o.log.Warn("retrieval failed, continuing without excerpts", zap.Error(err))
		return nil
	}
	return chunks
}

// generate runs the model fallback chain and always returns a usable
// summary string, degraded if necessary.
func (o *Orchestrator) generate(ctx context.Context, cmp domain.Comparison, chunks []domain.RetrievedChunk, question string) string {
	if o.generator == nil {
		return UnconfiguredMessage
	}
	prompt := buildPrompt(cmp, chunks, question)
	text, err := o.generateWithFallback(ctx, prompt)
	if err != nil {
		o.log.Error("all candidate models exhausted", zap.Error(err))
		return degradedMessage(err)
	}
	return text
}

// generateWithFallback walks the ordered candidate models. Each model is
// attempted up to MaxAttemptsPerModel times; only a rate-limit signal
// earns a delayed retry of the same model, any other failure advances to
// the next candidate immediately. The first success wins. Attempts are
// strictly sequential, never concurrent.
func (o *Orchestrator) generateWithFallback(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range o.opts.Models {
		for attempt := 1; attempt <= o.opts.MaxAttemptsPerModel; attempt++ {
			text, err := o.generator.Generate(ctx, prompt, model)
			if err == nil {
				return text, nil
			}
			lastErr = err

			rl, rateLimited := domain.AsRateLimited(err)
			if !rateLimited {
				o.log.Warn("model failed, advancing to next candidate",
					zap.String("model", model), zap.Error(err))
				break
			}
			if attempt >= o.opts.MaxAttemptsPerModel {
				o.log.Warn("model still rate limited after retry, advancing",
					zap.String("model", model))
				break
			}
			delay := o.opts.DefaultRetryDelay
			if hint := rl.RetryHint(); hint > 0 {
				delay = hint
			}
			o.log.Info("model rate limited, retrying",
				zap.String("model", model), zap.Duration("delay", delay))
			if err := o.sleep(ctx, delay); err != nil {
				return "", fmt.Errorf("generation aborted during backoff: %w", err)
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate models configured")
	}
	return "", lastErr
}

const degradedReasonLen = 120

func degradedMessage(err error) string {
	reason := truncateRunes(err.Error(), degradedReasonLen)
	return fmt.Sprintf("AI explanation is temporarily unavailable (%s). "+
		"The tax figures in this response are computed deterministically and are not affected.", reason)
}

func (o *Orchestrator) assemble(cmp domain.Comparison, chunks []domain.RetrievedChunk, summary string) *domain.ExplanationResponse {
	sources := make([]domain.SourceCitation, 0, len(chunks))
	for _, rc := range chunks {
		sources = append(sources, domain.SourceCitation{
			File:    rc.Chunk.SourceFile,
			Page:    rc.Chunk.Page,
			ChunkID: rc.Chunk.ID,
			Excerpt: truncateExcerpt(rc.Chunk.Text),
		})
	}
	savings := cmp.Savings
	if savings < 0 {
		savings = -savings
	}
	return &domain.ExplanationResponse{
		Verdict:        cmp.BetterRegime,
		Recommendation: cmp.Recommendation,
		TaxNumbers: domain.TaxNumbers{
			Old: summarize(cmp.Old),
			New: summarize(cmp.New),
		},
		Savings:   savings,
		AISummary: summary,
		Bullets:   extractBullets(summary),
		Sources:   sources,
		Timestamp: o.now().UTC(),
	}
}

func summarize(r domain.RegimeResult) domain.RegimeSummary {
	return domain.RegimeSummary{
		TaxableIncome:   r.TaxableIncome,
		TotalTax:        r.TotalTax,
		EffectiveRate:   r.EffectiveRatePercent,
		TotalDeductions: r.TotalDeductions,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
