// Package prompts manages the prompts sent to AI providers.
//
// Embedded .tmpl files are the source of truth for defaults. An optional
// Store holds file-based overrides so a prompt can be tuned without a
// rebuild. Every resolved prompt carries a SHA-256 hash that is recorded with
// each AI call, linking a response to the exact prompt text that produced it.
package prompts

// EmbeddedPrompt is a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key" yaml:"key"`                 // Dotted key: report.parse
	Text        string   `json:"text" yaml:"text"`               // Go template text
	Description string   `json:"description" yaml:"description"` // Human-readable description
	Variables   []string `json:"variables" yaml:"variables"`     // Extracted template variables
	Hash        string   `json:"hash" yaml:"hash"`               // SHA256 of Text
}

// ResolvedPrompt is the prompt text that will actually be used.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash       string   `json:"hash" yaml:"hash"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
}
