/*
Package domain contains the core types shared across Espalier components.

It defines the error taxonomy for tool dispatch, the invocation record that
describes one question-to-answer round trip, and the lifecycle events used
for observability. The package has no external dependencies beyond uuid and
is safe to import from any layer.
*/
package domain
