package model

import (
	"strings"
	"time"
)

// LawID identifies a Truth Echelon Law ("LAW 1" .. "LAW 7")
type LawID string

const (
	Law1 LawID = "LAW 1" // The claim stands regardless of emotional tone
	Law2 LawID = "LAW 2" // Intent doesn't erase a statement's structure
	Law3 LawID = "LAW 3" // Hedging does not shield a statement from classification
	Law4 LawID = "LAW 4" // Context affects meaning
	Law5 LawID = "LAW 5" // Speaker and listener share the burden of clarity
	Law6 LawID = "LAW 6" // Structure, function and reach determine classification
	Law7 LawID = "LAW 7" // Repetition doesn't make something truer
)

// Classification is the output of the statement classifier
type Classification struct {
	Echelon     Echelon `json:"echelon"`
	Subtype     Subtype `json:"subtype"`
	Explanation string  `json:"explanation"`
	Laws        []LawID `json:"laws"`              // Triggered laws in declaration order, empty when none
	RuleID      string  `json:"rule_id,omitempty"` // Which rule produced the labels
}

// Engine names the classification path that produced a verdict
type Engine string

const (
	EngineRules Engine = "rules" // Local phrase-matching rule table
	EngineLLM   Engine = "llm"   // Hosted language model
)

// Verdict wraps a classification with presentation metadata
type Verdict struct {
	ID             string         `json:"id"`
	Statement      string         `json:"statement"`
	Classification Classification `json:"classification"`
	Engine         Engine         `json:"engine"`
	Provider       string         `json:"provider,omitempty"` // openai, anthropic, ollama
	Model          string         `json:"model,omitempty"`
	Reply          string         `json:"reply,omitempty"` // Verbatim hosted-model reply
	Cached         bool           `json:"cached,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
