package testutil

// DefaultRunToken is used when a scenario does not name its own token.
const DefaultRunToken = "test-run-default"

// FixedTokenGenerator generates the same run token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// Unlike engine.FixedGenerator which returns tokens in sequence, this
// generator never runs out, so a scenario can run any number of estimates.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a new fixed run token generator.
//
// If token is empty, Generate() returns DefaultRunToken.
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = DefaultRunToken
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed run token.
//
// Implements engine.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
