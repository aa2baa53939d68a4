// Package mcp implements the Model Context Protocol (MCP) server for travelrec.
//
// The MCP server exposes four tools to AI assistants:
//   - recommend_places: Recommend destinations for a city, budget and preferences
//   - submit_review: Store a review and return its sentiment
//   - explain_graph: Show the category anchor behind a graph recommendation
//   - get_status: Report database statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Basic Usage
//
//	travelrec mcp
//
// # Tool: recommend_places
//
//	Request:
//	{
//	  "name": "recommend_places",
//	  "arguments": {
//	    "city": "Bandung",
//	    "budget": 20000,
//	    "preferences": ["taman", "budaya"]
//	  }
//	}
//
//	Response:
//	{
//	  "candidates": 42,
//	  "count": 5,
//	  "system_count": 2,
//	  "collaborative_count": 2,
//	  "gnn_count": 1,
//	  "recommendations": [
//	    {"id": 12, "name": "Taman Hutan Raya", "reco_type": "system", "match_percent": 92, ...}
//	  ]
//	}
//
// # Tool: submit_review
//
//	Request:
//	{
//	  "name": "submit_review",
//	  "arguments": {"place_id": 12, "comment": "Tempatnya bersih dan sejuk", "rating": 5}
//	}
//
//	Response:
//	{"status": "success", "label": "Positif", "sentiment_score": 0.76, ...}
//
// # Tool: explain_graph
//
//	Request:
//	{"name": "explain_graph", "arguments": {"place_id": 12}}
//
//	Response:
//	{"target": {...}, "anchor": {...}, "category": "Taman Kota"}
//
// # Error Handling
//
// Errors use JSON-RPC codes:
//
//	-32602  Invalid params (missing or invalid arguments)
//	-32603  Internal error (storage failure)
//	-32001  Place not found
//	-32002  City parameter is empty
package mcp
