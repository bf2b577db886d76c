// Package server is the HTTP front door: a Gin engine on a ServeMux,
// served over h2c, with server-level middleware (server/middleware) and
// the standard probe endpoints (server/endpoint).
package server
