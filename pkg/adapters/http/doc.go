// Package http exposes the tutoring service over a JSON API.
//
// Routes under /api/v1 (chat and session lifecycle) are checked against the
// embedded OpenAPI document before decoding. The document itself is served on
// /openapi.yaml with a Swagger UI on /swagger.
package http
