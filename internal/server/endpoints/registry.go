package endpoints

import (
	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Auth endpoints
		&SignUpEndpoint{},
		&LoginEndpoint{},
		&LogoutEndpoint{},

		// Profile endpoints
		&GetProfileEndpoint{},
		&ClearProfileEndpoint{},

		// Report endpoints
		&PreviewReportEndpoint{},
		&AnalyzeReportEndpoint{},
		&ExtractEndpoint{},

		// Kitchen endpoints
		&KitchenOptionsEndpoint{},
		&SuggestRecipesEndpoint{},

		// History endpoints
		&ReportHistoryEndpoint{},
		&ClearReportHistoryEndpoint{},
		&RecipeHistoryEndpoint{},
		&ClearRecipeHistoryEndpoint{},
		&TrendsEndpoint{},
		&ExportHistoryEndpoint{},

		// LLM call history endpoints
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&SetPromptEndpoint{},
		&ClearPromptEndpoint{},

		// Settings endpoints
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
}

// HealthCommands returns endpoints grouped at the top of "api".
func HealthCommands() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},
		&ExtractEndpoint{},
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}

// AuthCommands returns endpoints grouped under "auth".
func AuthCommands() []api.Endpoint {
	return []api.Endpoint{
		&SignUpEndpoint{},
		&LoginEndpoint{},
		&LogoutEndpoint{},
	}
}

// ProfileCommands returns endpoints grouped under "profile".
func ProfileCommands() []api.Endpoint {
	return []api.Endpoint{
		&GetProfileEndpoint{},
		&ClearProfileEndpoint{},
	}
}

// ReportCommands returns endpoints grouped under "reports".
func ReportCommands() []api.Endpoint {
	return []api.Endpoint{
		&PreviewReportEndpoint{},
		&AnalyzeReportEndpoint{},
	}
}

// KitchenCommands returns endpoints grouped under "kitchen".
func KitchenCommands() []api.Endpoint {
	return []api.Endpoint{
		&KitchenOptionsEndpoint{},
		&SuggestRecipesEndpoint{},
	}
}

// HistoryCommands returns endpoints grouped under "history".
func HistoryCommands() []api.Endpoint {
	return []api.Endpoint{
		&ReportHistoryEndpoint{},
		&ClearReportHistoryEndpoint{},
		&RecipeHistoryEndpoint{},
		&ClearRecipeHistoryEndpoint{},
		&TrendsEndpoint{},
		&ExportHistoryEndpoint{},
	}
}

// LLMCallCommands returns endpoints grouped under "llmcalls".
func LLMCallCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},
	}
}

// PromptCommands returns endpoints grouped under "prompts".
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&SetPromptEndpoint{},
		&ClearPromptEndpoint{},
	}
}

// SettingsCommands returns endpoints grouped under "settings".
func SettingsCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},
	}
}
