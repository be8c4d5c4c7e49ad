//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package mcp

import (
	"fmt"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/weavegraph/weavegraph/tool"
)

// transport specifies the transport method.
type transport string

const (
	// transportStdio is the stdio transport.
	transportStdio transport = "stdio"
	// transportStreamable is the streamable HTTP transport.
	transportStreamable transport = "streamable"
)

// Default configurations.
var (
	defaultClientInfo = mcp.Implementation{
		Name:    "weavegraph",
		Version: "1.0.0",
	}

	// defaultRetryConfig provides conservative retry defaults.
	defaultRetryConfig = RetryConfig{
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		BackoffFactor:  2.0,
		MaxBackoff:     8 * time.Second,
	}
)

// ConnectionConfig defines the configuration for connecting to an MCP server.
type ConnectionConfig struct {
	// Transport specifies the transport method: "stdio", "streamable".
	Transport string `json:"transport"`

	// Streamable configuration.
	ServerURL string            `json:"server_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`

	// STDIO configuration.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`

	// Common configuration.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Advanced configuration.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// RetryConfig defines configuration for MCP tool call retry behavior.
type RetryConfig struct {
	// MaxRetries specifies the maximum number of retry attempts.
	MaxRetries int `json:"max_retries"`

	// InitialBackoff specifies the backoff before the first retry.
	InitialBackoff time.Duration `json:"initial_backoff"`

	// BackoffFactor multiplies the backoff duration for each retry.
	BackoffFactor float64 `json:"backoff_factor"`

	// MaxBackoff caps exponential growth.
	MaxBackoff time.Duration `json:"max_backoff"`
}

// toolSetConfig holds internal configuration for ToolSet.
type toolSetConfig struct {
	connectionConfig ConnectionConfig
	toolFilter       tool.FilterFunc
	retryConfig      RetryConfig
	capabilities     map[string][]tool.Capability
	mcpOptions       []mcp.ClientOption
}

// ToolSetOption is a function type for configuring ToolSet.
type ToolSetOption func(*toolSetConfig)

// WithToolFilter configures tool filtering on the set.
func WithToolFilter(filter tool.FilterFunc) ToolSetOption {
	return func(c *toolSetConfig) {
		c.toolFilter = filter
	}
}

// WithRetry configures retry behavior for tool calls.
func WithRetry(config RetryConfig) ToolSetOption {
	return func(c *toolSetConfig) {
		c.retryConfig = config
	}
}

// WithToolCapabilities attaches explicit capability metadata to the named
// tools exposed by this set. Tools without an entry fall back to the
// capability registry's name lookup.
func WithToolCapabilities(capabilities map[string][]tool.Capability) ToolSetOption {
	return func(c *toolSetConfig) {
		c.capabilities = capabilities
	}
}

// WithMCPOptions passes additional options to the underlying MCP client.
func WithMCPOptions(options ...mcp.ClientOption) ToolSetOption {
	return func(c *toolSetConfig) {
		c.mcpOptions = append(c.mcpOptions, options...)
	}
}

// validateTransport converts a transport string to the internal type.
func validateTransport(value string) (transport, error) {
	switch transport(value) {
	case transportStdio:
		return transportStdio, nil
	case transportStreamable, "streamable_http":
		return transportStreamable, nil
	default:
		return "", fmt.Errorf("unsupported transport: %s", value)
	}
}
