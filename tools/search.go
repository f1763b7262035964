package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"fogmoe/model"
)

const defaultSearchEndpoint = "https://google.serper.dev/search"

// maxOrganicResults caps how many organic results are fed back to the
// model; search APIs return far more than a chat reply can use.
const maxOrganicResults = 10

// SearchTool performs a web search through a Serper-style JSON API and
// returns the organic results.
type SearchTool struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSearchTool creates the google_search tool. An empty endpoint selects
// the default Serper API.
func NewSearchTool(apiKey, endpoint string) *SearchTool {
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	return &SearchTool{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Definition implements Tool.
func (t *SearchTool) Definition() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "google_search",
		Description: "Search the web and return the top organic results with title, link, and snippet.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute implements Tool.
func (t *SearchTool) Execute(ctx context.Context, rc *model.RequestContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if t.apiKey == "" {
		return nil, fmt.Errorf("search API key not configured")
	}

	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	organic := parsed.Organic
	if len(organic) > maxOrganicResults {
		organic = organic[:maxOrganicResults]
	}

	results := make([]map[string]any, len(organic))
	for i, r := range organic {
		results[i] = map[string]any{
			"title":   r.Title,
			"link":    r.Link,
			"snippet": r.Snippet,
		}
	}

	return map[string]any{
		"query":   query,
		"organic": results,
	}, nil
}
