package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// recommendPlacesTool returns the tool definition for recommend_places
func recommendPlacesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "recommend_places",
		Description: "Recommend up to five tourist destinations in a city within a budget, mixing content, collaborative and category-graph suggestions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"city": map[string]interface{}{
					"type":        "string",
					"description": "City name, matched exactly (e.g. Bandung, Jakarta, Yogyakarta)",
				},
				"budget": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum ticket price in rupiah",
					"minimum":     0,
				},
				"preferences": map[string]interface{}{
					"type":        "array",
					"description": "Category keywords such as taman, bahari, budaya",
					"minItems":    1,
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"city", "budget", "preferences"},
		},
	}
}

// submitReviewTool returns the tool definition for submit_review
func submitReviewTool() mcp.Tool {
	return mcp.Tool{
		Name:        "submit_review",
		Description: "Submit a review for a place; the comment's sentiment is scored and the place average updated",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"place_id": map[string]interface{}{
					"type":        "integer",
					"description": "Place identifier",
					"minimum":     1,
				},
				"comment": map[string]interface{}{
					"type":        "string",
					"description": "Free-text review in Indonesian",
				},
				"rating": map[string]interface{}{
					"type":        "integer",
					"description": "Star rating",
					"minimum":     1,
					"maximum":     5,
				},
			},
			Required: []string{"place_id", "rating"},
		},
	}
}

// explainGraphTool returns the tool definition for explain_graph
func explainGraphTool() mcp.Tool {
	return mcp.Tool{
		Name:        "explain_graph",
		Description: "Show a place together with the top-rated place of the same city and category that anchors graph recommendations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"place_id": map[string]interface{}{
					"type":        "integer",
					"description": "Place identifier",
					"minimum":     1,
				},
			},
			Required: []string{"place_id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report database statistics: places, reviews, users, cities and schema version",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
