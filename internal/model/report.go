package model

import "time"

// BatchReport collects verdicts for a set of statements (file or scanned page)
type BatchReport struct {
	Source      string     `json:"source"`               // File path or URL the statements came from
	Title       string     `json:"title,omitempty"`      // Page title when Source is a URL
	GeneratedAt time.Time  `json:"generated_at"`         // When the batch ran
	FetchMeta   *FetchMeta `json:"fetch_meta,omitempty"` // HTTP metadata when Source is a URL
	Verdicts    []Verdict  `json:"verdicts"`
	Failures    []Failure  `json:"failures,omitempty"`
	Summary     Summary    `json:"summary"`
}

// Failure records a statement the hosted path could not classify
type Failure struct {
	Statement string `json:"statement"`
	Error     string `json:"error"`
}

// FetchMeta contains HTTP metadata from fetching a scanned page
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Summary is the transparent breakdown of a batch
type Summary struct {
	Total     int             `json:"total"`
	ByEchelon map[Echelon]int `json:"by_echelon"`
	ByLaw     map[LawID]int   `json:"by_law"`
	Neutral   int             `json:"neutral"`  // Statements too short to classify
	Fallback  int             `json:"fallback"` // Statements no content rule matched
	Signals   []Signal        `json:"signals,omitempty"`
}

// Signal is a diagnostic observation about a batch
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalUnclassified   SignalType = "unclassified"    // Share of fallback/neutral results
	SignalFalsehoodShare SignalType = "falsehood_share" // Share of lie/misinformation echelons
	SignalHedging        SignalType = "hedging"         // Share of statements triggering LAW 3
	SignalRepetition     SignalType = "repetition"      // Statements triggering LAW 7
	SignalDominant       SignalType = "dominant"        // Single echelon dominates the batch
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
