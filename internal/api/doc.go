// Package api adapts HTTP to the account and task services: it decodes and
// validates request bodies, reads the authenticated user from the request
// context, and maps service errors to status codes and client-safe messages.
//
// Handlers are plain http.HandlerFunc methods; routing and middleware are
// assembled in cmd/server.
package api
