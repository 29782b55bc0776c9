package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/echelon/internal/law"
)

// Provider defines the interface for hosted language-model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify submits the templated statement and returns the model's free-text reply
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for a hosted classification
type ClassifyRequest struct {
	// Statement is the raw user statement
	Statement string

	// Prompt overrides the default instruction template (if empty, use BuildPrompt)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the reply length
	MaxTokens int
}

// ClassifyResponse contains the model's reply, verbatim
type ClassifyResponse struct {
	// Reply is the model's reply text, trimmed
	Reply string

	// Model is the model that generated the reply
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for reply generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 300,
	}
}

const systemPrompt = "You are the official classifier for the Truth Echelon Framework. You follow the required output format exactly."

// BuildPrompt wraps a statement in the Truth Echelon instruction template
func BuildPrompt(statement string) string {
	var laws strings.Builder
	for _, l := range law.Default().Laws() {
		fmt.Fprintf(&laws, "%s: %s\n", l.ID, l.Description)
	}

	return fmt.Sprintf(`You are the official classifier for the Truth Echelon Framework, a structural typology for public statements.

You must classify every input into:
- One of 12 official Echelons
- One matching Subtype (from the approved list)
- Provide an Explanation
- If applicable, state if a Truth Echelon Law is being invoked or violated (see below)
- Output must follow the exact structure below. Do not alter it.

Output Format:
Echelon: <Name>
Subtype: <Subtype>
Explanation: <1-2 sentence structured explanation>
Law Alert (if any): <State which Truth Echelon Law applies or is being violated. If none, omit this line.>

Official Echelons and Subtypes:
%s
Do NOT:
- Invent subtypes
- Merge labels or rename echelons
- Ramble or use run-on sentences

Truth Echelon Laws (summary):
%s
Now classify the following public statement with precision and law awareness:

Statement: "%s"
`, echelonCatalog(), laws.String(), statement)
}

func resolveMaxTokens(req, cfg int) int {
	if req > 0 {
		return req
	}
	if cfg > 0 {
		return cfg
	}
	return 300
}
