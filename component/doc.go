// Package component defines the lifecycle contract shared by infrastructure
// pieces and a Registry that starts and stops them in order.
package component
