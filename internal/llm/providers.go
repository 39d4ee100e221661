package llm

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// GroqProvider serves completions from Groq.
type GroqProvider struct {
	chatClient
}

func NewGroq(apiKey, baseURL string) *GroqProvider {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	return &GroqProvider{chatClient: newChatClient(apiKey, baseURL)}
}

func (p *GroqProvider) Name() string { return Groq }

func (p *GroqProvider) Models() []string {
	return []string{"llama-3.1-8b-instant", "llama-3.3-70b-versatile", "gemma2-9b-it"}
}

// OpenAIProvider serves completions from OpenAI.
type OpenAIProvider struct {
	chatClient
}

func NewOpenAI(apiKey, baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	return &OpenAIProvider{chatClient: newChatClient(apiKey, baseURL)}
}

func (p *OpenAIProvider) Name() string { return OpenAI }

func (p *OpenAIProvider) Models() []string {
	return []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}
}

// DefaultModel returns the first model of the named provider.
func DefaultModel(provider string) string {
	if models := Models(provider); len(models) > 0 {
		return models[0]
	}
	return ""
}

// Models lists the models of the named provider without building a client.
func Models(provider string) []string {
	switch provider {
	case Groq, "":
		return (&GroqProvider{}).Models()
	case OpenAI:
		return (&OpenAIProvider{}).Models()
	}
	return nil
}
