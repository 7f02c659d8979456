/*
Package apispec reduces OpenAPI descriptions to the minimum a completion
model needs to synthesize an HTTP call.

A full description carries schemas, examples, and response bodies that blow
past any context window. Reduce projects it down to method, path, a one-line
summary, and parameter name/location/required/type tuples. The projection is
lossy, idempotent, and never larger than its input.
*/
package apispec
