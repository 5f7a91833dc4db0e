package model

// ================ Config ================

// ConversationConfig bounds the per-chat context window, the summarization
// threshold and the workflow retry loops.
type ConversationConfig struct {
	ContextTokens   int    `envconfig:"CONVERSATION_CONTEXT_TOKENS" default:"4000"`
	SummarizeTokens int    `envconfig:"CONVERSATION_SUMMARIZE_TOKENS" default:"2000"`
	CharsPerToken   int    `envconfig:"CONVERSATION_CHARS_PER_TOKEN" default:"4"`
	HistoryTurns    int    `envconfig:"CONVERSATION_HISTORY_TURNS" default:"10"`
	MaxReplans      int    `envconfig:"CONVERSATION_MAX_REPLANS" default:"2"`
	MaxFallbacks    int    `envconfig:"CONVERSATION_MAX_FALLBACKS" default:"2"`
	TTL             string `envconfig:"CONVERSATION_TTL" default:"15m"`
}

// StructuredModelConfig configures the low-temperature model used for
// routing, planning, feedback and fallback decisions (JSON outputs).
type StructuredModelConfig struct {
	Model       string  `envconfig:"STRUCTURED_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"STRUCTURED_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"STRUCTURED_TEMPERATURE" default:"0.1"`
}

// ResponseModelConfig configures the model that writes user-visible text
// (conversation, moderation, analysis and summarization agents).
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

// ServerConfig configures the HTTP ingress.
type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}
