// Package html provides an Extractor implementation for HTML documents.
// It drops scripts, styles and page chrome, then renders the remaining
// markup as Markdown so headings and lists survive chunking.
package html
