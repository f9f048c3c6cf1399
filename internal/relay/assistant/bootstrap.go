package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// WebSearchToolName is the function tool the assistant calls when it needs
// real-time web data. The relay recognizes this name when satisfying a
// paused run.
const WebSearchToolName = "tavily_search"

// assistantInstructions is the system prompt installed on the hosted
// assistant at bootstrap time.
const assistantInstructions = `
You are CaseBot, a legal assistant trained to answer legal questions using uploaded legal documents, general knowledge, and real-time web data through the ` + "`tavily_search`" + ` tool.
Here is how you should respond:
1. First, try to answer using uploaded documents (via file_search).
2. If information is not available in the documents, use your general legal knowledge.
3. If the user asks about recent laws, amendments, or current events (especially with dates like 2024, 2025, etc.), call the ` + "`tavily_search`" + ` tool to fetch real-time data from the internet.
Follow these rules:
- For greetings like 'hi', introduce yourself warmly.
- For off-topic or casual questions, respond with: "I'm here to assist with legal or document-related questions."
- For inappropriate questions, respond with: "This question cannot be answered."
- Be clear, concise, and professional in all legal answers.
`

// BootstrapOptions configures assistant creation.
type BootstrapOptions struct {
	APIKey        string
	VectorStoreID string
	CacheFile     string // optional path caching the created assistant id
}

// GetOrCreateAssistant returns the identifier of the hosted assistant,
// creating it when neither the ASSISTANT_ID environment variable nor the
// cache file yields one. The created assistant carries the file-search tool
// bound to the document store and the web-search function tool.
func GetOrCreateAssistant(ctx context.Context, opts BootstrapOptions) (string, error) {
	if id := os.Getenv("ASSISTANT_ID"); id != "" {
		return id, nil
	}

	if opts.CacheFile != "" {
		if cached, err := os.ReadFile(opts.CacheFile); err == nil {
			if id := strings.TrimSpace(string(cached)); id != "" {
				return id, nil
			}
		}
	}

	if opts.VectorStoreID == "" {
		return "", fmt.Errorf("vector store id is required to create an assistant")
	}

	client := openai.NewClient(option.WithAPIKey(opts.APIKey))
	created, err := client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        openai.ChatModelGPT4oMini,
		Name:         openai.String("Case Bot"),
		Instructions: openai.String(assistantInstructions),
		Tools: []openai.AssistantToolUnionParam{
			{OfFileSearch: &openai.FileSearchToolParam{}},
			{OfFunction: &openai.FunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        WebSearchToolName,
					Description: openai.String("Search the web for recent legal updates or external knowledge."),
					Parameters: openai.FunctionParameters{
						"type": "object",
						"properties": map[string]any{
							"query": map[string]any{
								"type":        "string",
								"description": "The question or search query to run.",
							},
						},
						"required": []string{"query"},
					},
				},
			}},
		},
		ToolResources: openai.BetaAssistantNewParamsToolResources{
			FileSearch: openai.BetaAssistantNewParamsToolResourcesFileSearch{
				VectorStoreIDs: []string{opts.VectorStoreID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating assistant: %w", err)
	}

	if opts.CacheFile != "" {
		if err := os.WriteFile(opts.CacheFile, []byte(created.ID), 0600); err != nil {
			return "", fmt.Errorf("caching assistant id: %w", err)
		}
	}

	return created.ID, nil
}
