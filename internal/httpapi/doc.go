// Package httpapi serves the resolution pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness probe
//	GET  /api/providers   configured sources and extraction engines
//	POST /api/resolve     {"queries": [...]} or {"text": "..."}
//	POST /api/scan        multipart upload, field "image"
//
// Result responses use the ResultSet JSON document unless ?format selects
// markdown, table, or xlsx. ?download=1 adds a Content-Disposition header.
// Every response carries X-Request-ID, which is also the run correlation ID
// in the logs.
package httpapi
