// Package service exposes the recommender operations to transports.
//
// Service owns the storage handle, the sentiment analyzer and the hybrid
// merger. HTTP handlers and MCP tools call it and map its errors:
//
//   - ErrInvalidInput: the request was rejected before touching storage
//   - ErrPlaceNotFound: the referenced place does not exist
//   - anything else: a storage failure, fatal to the request
//
// A city and budget that match no places is not an error; Recommend returns
// an empty list.
package service
