/*
Package openapi implements the spec-guided tool variant.

The tool holds a reduced API description and a completion model. Invoke
renders the description into a prompt, asks the model to synthesize one
concrete HTTP request for the query, enforces the host allow-list, executes
the request, and summarizes the response against the original question.

Every failure the tool understands becomes a textual observation for the
reasoning loop; only transport-level completion failures escape as errors.
*/
package openapi
