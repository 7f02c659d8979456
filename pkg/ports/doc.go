/*
Package ports defines the driven ports (interfaces) for the Espalier dispatcher.

These interfaces decouple the core logic from external implementations, allowing
the dispatcher to work with different completion providers, response caches,
and tool variants.

# Key Interfaces

  - Tool: A named, bounded external action invoked with a natural-language query.
  - Completer: A hosted completion model (prompt in, text out).
  - ResponseCache: Optional caching for upstream GET responses.
*/
package ports
