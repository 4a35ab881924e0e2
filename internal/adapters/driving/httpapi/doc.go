// Package httpapi serves the knowledge base over a JSON HTTP API built on echo.
//
// Routes:
//
//	GET  /health
//	POST /api/knowledge-base/upload
//	POST /api/knowledge-base/search
//	POST /api/knowledge-base/chat
//	GET  /api/knowledge-base/documents
//	GET  /api/knowledge-base/documents/:id
//
// Failures are reported as {"detail": "..."} with a status code derived from
// the domain error kind.
package httpapi
