package domain

import "time"

// Regime identifies one of the two statutory tax computation schemes.
type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
	// RegimeEqual is only ever used as a comparison verdict, never as an
	// input to a calculator.
	RegimeEqual Regime = "equal"
)

// DeductionSet holds the itemized deductions claimed under the old regime.
// Section 80C and 80D amounts above their statutory caps are clamped, not
// rejected, at computation time. The new regime ignores all of these.
type DeductionSet struct {
	Section80C int64 `json:"section80C"`
	Section80D int64 `json:"section80D"`
	HRA        int64 `json:"hra"`
	Other      int64 `json:"other"`
}

// TaxInput is the immutable per-request input to the tax engine.
type TaxInput struct {
	GrossIncome int64        `json:"grossIncome"`
	Deductions  DeductionSet `json:"deductions"`
}

// RegimeResult is the outcome of running one regime's slab computation.
// All monetary fields are whole currency units; cess and base tax are
// rounded to the nearest unit.
type RegimeResult struct {
	Regime               Regime  `json:"regime"`
	GrossIncome          int64   `json:"grossIncome"`
	TotalDeductions      int64   `json:"totalDeductions"`
	TaxableIncome        int64   `json:"taxableIncome"`
	BaseTax              int64   `json:"baseTax"`
	Cess                 int64   `json:"cess"`
	TotalTax             int64   `json:"totalTax"`
	EffectiveRatePercent float64 `json:"effectiveRatePercent"`
}

// Comparison holds both regime results and the verdict between them.
// Savings is signed: old.TotalTax - new.TotalTax.
type Comparison struct {
	Old            RegimeResult `json:"old"`
	New            RegimeResult `json:"new"`
	BetterRegime   Regime       `json:"betterRegime"`
	Savings        int64        `json:"savings"`
	Recommendation string       `json:"recommendation"`
}

// Document represents a single corpus file loaded for ingestion.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded window of source-document text stored for retrieval.
type Chunk struct {
	ID          string
	SourceFile  string
	Page        int
	ChunkIndex  int
	TotalChunks int
	Text        string
}

// RetrievedChunk is a chunk returned from a similarity search, together
// with its distance from the query vector (lower is closer).
type RetrievedChunk struct {
	Chunk    Chunk
	Distance float64
}

// SourceCitation is the trimmed, caller-facing view of a retrieved chunk.
type SourceCitation struct {
	File    string `json:"file"`
	Page    int    `json:"page"`
	ChunkID string `json:"chunk_id"`
	Excerpt string `json:"excerpt"`
}

// RegimeSummary is the trimmed view of a RegimeResult exposed in responses.
type RegimeSummary struct {
	TaxableIncome   int64   `json:"taxableIncome"`
	TotalTax        int64   `json:"totalTax"`
	EffectiveRate   float64 `json:"effectiveRate"`
	TotalDeductions int64   `json:"totalDeductions"`
}

// TaxNumbers carries the deterministic figures for both regimes.
type TaxNumbers struct {
	Old RegimeSummary `json:"old"`
	New RegimeSummary `json:"new"`
}

// ExplanationResponse is the externally visible result of the explain
// operation. Savings here is an absolute value; the sign is conveyed by
// Verdict. Constructed fresh per request.
type ExplanationResponse struct {
	Verdict        Regime           `json:"verdict"`
	Recommendation string           `json:"recommendation"`
	TaxNumbers     TaxNumbers       `json:"taxNumbers"`
	Savings        int64            `json:"savings"`
	AISummary      string           `json:"aiSummary"`
	Bullets        []string         `json:"bullets"`
	Sources        []SourceCitation `json:"sources"`
	Timestamp      time.Time        `json:"timestamp"`
}
