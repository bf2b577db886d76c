// Package endpoint provides the probe and build-info handlers mounted by
// Server.RegisterDefaultEndpoints.
package endpoint
