package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/travelrec/internal/service"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodePlaceNotFound  = -32001 // Referenced place does not exist
	ErrorCodeEmptyCityInput = -32002 // City parameter is empty
)

// handleRecommendPlaces handles the recommend_places tool invocation
func (s *Server) handleRecommendPlaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	city, ok := args["city"].(string)
	if !ok || city == "" {
		return nil, newMCPError(ErrorCodeEmptyCityInput, "city parameter is required", map[string]interface{}{
			"param":  "city",
			"reason": "missing or empty",
		})
	}

	budget, ok := getInt(args, "budget")
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "budget parameter must be an integer", map[string]interface{}{
			"param":  "budget",
			"reason": "missing or not a number",
		})
	}

	prefs, err := getStringSlice(args, "preferences")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid preferences", map[string]interface{}{
			"param":  "preferences",
			"reason": err.Error(),
		})
	}

	resp, err := s.svc.Recommend(ctx, service.RecommendRequest{
		City:        city,
		Budget:      budget,
		Preferences: prefs,
	})
	if err != nil {
		return nil, toMCPError(err, "recommendation failed")
	}

	response := map[string]interface{}{
		"city":                city,
		"budget":              budget,
		"candidates":          resp.Candidates,
		"count":               len(resp.Recommendations),
		"system_count":        resp.SystemCount,
		"collaborative_count": resp.CollaborativeCount,
		"gnn_count":           resp.GraphCount,
		"duration_ms":         resp.Duration.Milliseconds(),
		"recommendations":     resp.Recommendations,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSubmitReview handles the submit_review tool invocation
func (s *Server) handleSubmitReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	placeID, ok := getInt(args, "place_id")
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "place_id parameter is required", map[string]interface{}{
			"param":  "place_id",
			"reason": "missing or not a number",
		})
	}
	rating, ok := getInt(args, "rating")
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "rating parameter is required", map[string]interface{}{
			"param":  "rating",
			"reason": "missing or not a number",
		})
	}
	comment := getStringDefault(args, "comment", "")

	resp, err := s.svc.SubmitReview(ctx, service.SubmitReviewRequest{
		PlaceID: int64(placeID),
		Comment: comment,
		Rating:  rating,
	})
	if err != nil {
		return nil, toMCPError(err, "failed to submit review")
	}
	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleExplainGraph handles the explain_graph tool invocation
func (s *Server) handleExplainGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	placeID, ok := getInt(args, "place_id")
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "place_id parameter is required", map[string]interface{}{
			"param":  "place_id",
			"reason": "missing or not a number",
		})
	}

	exp, err := s.svc.GraphExplanation(ctx, int64(placeID))
	if err != nil {
		return nil, toMCPError(err, "failed to explain graph")
	}

	response := map[string]interface{}{
		"target":   exp.Target,
		"anchor":   exp.Anchor,
		"category": exp.Category,
	}
	if exp.Anchor == nil {
		response["message"] = "No other place shares this city and category."
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"places_count":  stats.PlacesCount,
			"reviews_count": stats.ReviewsCount,
			"users_count":   stats.UsersCount,
			"cities_count":  stats.CitiesCount,
			"db_size_mb":    fmt.Sprintf("%.2f", stats.SizeMB),
		},
		"schema_version": stats.SchemaVersion,
		"build_mode":     stats.BuildMode,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// toMCPError maps service errors onto MCP error codes
func toMCPError(err error, message string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	case errors.Is(err, service.ErrPlaceNotFound):
		return newMCPError(ErrorCodePlaceNotFound, "place not found", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getInt extracts an integral number parameter
func getInt(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// getStringSlice extracts an array of strings
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	switch v := args[key].(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d is not a string", i)
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return nil, errors.New("missing")
	default:
		return nil, errors.New("must be an array of strings")
	}
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
