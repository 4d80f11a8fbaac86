package config

// Model is a completion model that clients may select.
type Model struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// DefaultModel is used when a request names no model or an unknown one.
const DefaultModel = "llama-3.3-70b-versatile"

// DefaultSystemPrompt frames every chat completion.
const DefaultSystemPrompt = "You are an expert to generate a beautiful, well-structured Markdown-formatted answer for the following query:"

// DefaultFormatPrompt is sent with the first answer when the Markdown
// formatting pass is enabled.
const DefaultFormatPrompt = `Reformat the following answer as clean, well-structured Markdown.
Keep every fact, do not add new content, do not repeat sections, and respond with the Markdown only.`

// ValidModels lists the models exposed to clients.
var ValidModels = []Model{
	{
		Label:       "DeepSeek R1 Distill (70B)",
		Value:       "deepseek-r1-distill-llama-70b",
		Description: "Optimized for high-quality responses with efficient performance.",
	},
	{
		Label:       "Mixtral 8x7B",
		Value:       "mixtral-8x7b-32768",
		Description: "Balances performance and speed for general-purpose tasks.",
	},
	{
		Label:       "Llama 3.3 70B Versatile",
		Value:       "llama-3.3-70b-versatile",
		Description: "Versatile model suitable for a wide range of applications.",
	},
	{
		Label:       "Llama 3.1 8B Instant",
		Value:       "llama-3.1-8b-instant",
		Description: "Provides quick responses for lightweight tasks.",
	},
	{
		Label:       "Llama 3.2 1B Preview",
		Value:       "llama-3.2-1b-preview",
		Description: "Preview model for experimental features and testing.",
	},
	{
		Label:       "Llama 3.2 3B Preview",
		Value:       "llama-3.2-3b-preview",
		Description: "Mid-sized preview model for development and evaluation.",
	},
}

// LookupModel finds a model by its API value.
func LookupModel(value string) (Model, bool) {
	for _, m := range ValidModels {
		if m.Value == value {
			return m, true
		}
	}
	return Model{}, false
}

// ResolveModel returns value when it is a supported model and fallback otherwise.
func ResolveModel(value, fallback string) string {
	if _, ok := LookupModel(value); ok {
		return value
	}
	return fallback
}
