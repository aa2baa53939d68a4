// Package httpapi serves the recommender over HTTP using chi.
//
// Routes:
//
//	POST /recommend                  merged recommendations for a city and budget
//	POST /submit_review              store a review and return its sentiment
//	GET  /graph_visualization/{id}   the place with its category anchor
//	GET  /health                     liveness plus storage statistics
//	GET  /metrics                    Prometheus metrics
//
// Errors are returned as {"error": {"code": ..., "message": ...}}.
package httpapi
