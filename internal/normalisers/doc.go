// Package normalisers provides the Extractor registry and content type
// detection. Each subpackage knows how to extract text from a specific
// media type.
//
// Extractors are registered with the Registry at startup.
package normalisers
