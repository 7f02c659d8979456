/*
Package schema validates loosely-typed option maps against a declared set of
recognized fields.

Configuration for Espalier components historically arrived as untyped maps
(YAML files, environment overrides, tool parameter sets). This package gives
those maps a typed contract: each recognized option declares its expected
primitive type, unknown options are rejected, and all failures are reported
together rather than one at a time.
*/
package schema
