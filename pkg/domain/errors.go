package domain

import "errors"

// ErrMalformedSpec is returned when an API description cannot be reduced
// (e.g. the operations collection is missing entirely).
var ErrMalformedSpec = errors.New("malformed api description")

// ErrDomainNotAllowed is returned when a synthesized request targets a host
// outside the configured allow-list. The request is rejected before any
// network call is made.
var ErrDomainNotAllowed = errors.New("domain not allowed")

// ErrUpstreamFailure is returned when the target API call fails: network
// error, non-2xx response, or a body that cannot be decoded.
var ErrUpstreamFailure = errors.New("upstream failure")

// ErrModelFailure is returned when the completion model call fails or its
// output cannot be parsed into a request plan.
var ErrModelFailure = errors.New("model failure")

// ErrRateLimited is returned when the completion model rejects a request
// with a rate-limit response. It is considered transient.
var ErrRateLimited = errors.New("rate limited")

// ErrToolNotFound is returned when a tool name cannot be resolved in the registry.
var ErrToolNotFound = errors.New("tool not found")

// ErrCacheMiss is returned by response caches when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// RetriesExhaustedMessage is the fixed textual result surfaced to the
// reasoning loop when a turn fails on every attempt.
const RetriesExhaustedMessage = "Error too many failed retries"
