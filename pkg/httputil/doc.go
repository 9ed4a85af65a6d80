// Package httputil provides the HTTP client used to download package indexes.
//
// # Overview
//
//   - [Client]: GET with caching, status mapping and retry
//   - [Retry]: automatic retry with exponential backoff
//
// # Errors
//
// [Client] maps responses to coded errors from pkg/errors:
//
//   - transport failures and 5xx responses: NETWORK_ERROR, retried
//   - 404: NOT_FOUND, not retried
//   - any other non-200 status: NETWORK_ERROR, not retried
//
// # Caching
//
// Response bodies are stored in a cache.Cache under keys produced by
// cache.Keyer.HTTPKey. Pass refresh=true to bypass the lookup; the fresh
// body is still written back.
package httputil
