// Package api provides an HTTP API server for capturing and searching records.
package api

import "github.com/papercomputeco/tagstash/api/mcp"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// MCP, when set, is mounted at /mcp
	MCP *mcp.Server
}
