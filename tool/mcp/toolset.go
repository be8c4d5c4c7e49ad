//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package mcp exposes tools served by MCP servers as weavegraph tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/weavegraph/weavegraph/log"
	"github.com/weavegraph/weavegraph/tool"
)

// ToolSet exposes the tools of one MCP server. It connects lazily on the
// first Tools call and caches the discovered tool list.
type ToolSet struct {
	name    string
	config  toolSetConfig
	session *sessionManager

	mu    sync.Mutex
	tools []tool.Tool
}

var _ tool.ToolSet = (*ToolSet)(nil)

// NewToolSet creates a ToolSet for the MCP server described by config.
func NewToolSet(name string, config ConnectionConfig, opts ...ToolSetOption) *ToolSet {
	cfg := toolSetConfig{
		connectionConfig: config,
		retryConfig:      defaultRetryConfig,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ToolSet{
		name:    name,
		config:  cfg,
		session: &sessionManager{config: cfg.connectionConfig, mcpOptions: cfg.mcpOptions},
	}
}

// Name implements the tool.ToolSet interface.
func (ts *ToolSet) Name() string {
	return ts.name
}

// Tools returns the tools exposed by the MCP server, connecting and listing
// on first use. Returns nil when the server is unreachable; the error is
// logged rather than surfaced because callers treat tool sets as optional.
func (ts *ToolSet) Tools(ctx context.Context) []tool.Tool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.tools != nil {
		return ts.filtered(ctx, ts.tools)
	}
	if err := ts.session.connect(ctx); err != nil {
		log.Errorf("mcp toolset %s: connect: %v", ts.name, err)
		return nil
	}
	mcpTools, err := ts.session.listTools(ctx)
	if err != nil {
		log.Errorf("mcp toolset %s: list tools: %v", ts.name, err)
		return nil
	}

	tools := make([]tool.Tool, 0, len(mcpTools))
	for i := range mcpTools {
		tools = append(tools, newMCPTool(&mcpTools[i], ts.session, ts.config.retryConfig, ts.config.capabilities[mcpTools[i].Name]))
	}
	ts.tools = tools
	return ts.filtered(ctx, tools)
}

func (ts *ToolSet) filtered(ctx context.Context, tools []tool.Tool) []tool.Tool {
	if ts.config.toolFilter == nil {
		return tools
	}
	return tool.FilterTools(ctx, tools, ts.config.toolFilter)
}

// Close implements the tool.ToolSet interface.
func (ts *ToolSet) Close() error {
	return ts.session.close()
}

// mcpTool wraps a remote MCP tool as a CallableTool.
type mcpTool struct {
	declaration  *tool.Declaration
	session      *sessionManager
	retry        RetryConfig
	capabilities []tool.Capability
}

var _ tool.CallableTool = (*mcpTool)(nil)

func newMCPTool(t *mcp.Tool, session *sessionManager, retry RetryConfig, capabilities []tool.Capability) *mcpTool {
	declaration := &tool.Declaration{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: convertInputSchema(t),
	}
	return &mcpTool{
		declaration:  declaration,
		session:      session,
		retry:        retry,
		capabilities: capabilities,
	}
}

// convertInputSchema converts the MCP input schema into a tool.Schema by
// round-tripping through JSON; the two shapes are JSON-compatible.
func convertInputSchema(t *mcp.Tool) *tool.Schema {
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		log.Errorf("mcp tool %s: marshal input schema: %v", t.Name, err)
		return &tool.Schema{Type: tool.TypeObject}
	}
	var schema tool.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		log.Errorf("mcp tool %s: unmarshal input schema: %v", t.Name, err)
		return &tool.Schema{Type: tool.TypeObject}
	}
	return &schema
}

// Declaration implements the tool.Tool interface.
func (t *mcpTool) Declaration() *tool.Declaration {
	return t.declaration
}

// Capabilities returns explicit capability metadata configured for the tool.
func (t *mcpTool) Capabilities() []tool.Capability {
	return t.capabilities
}

// Call invokes the remote tool with retry and exponential backoff.
func (t *mcpTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var arguments map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &arguments); err != nil {
			return nil, fmt.Errorf("tool %s: unmarshal arguments: %w", t.declaration.Name, err)
		}
	}

	backoff := t.retry.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= t.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff = time.Duration(float64(backoff) * t.retry.BackoffFactor)
			if backoff > t.retry.MaxBackoff {
				backoff = t.retry.MaxBackoff
			}
		}
		contents, err := t.session.callTool(ctx, t.declaration.Name, arguments)
		if err == nil {
			return joinTextContent(contents), nil
		}
		lastErr = err
		log.Warnf("mcp tool %s: attempt %d failed: %v", t.declaration.Name, attempt+1, err)
	}
	return nil, fmt.Errorf("tool %s: %w", t.declaration.Name, lastErr)
}

// joinTextContent flattens MCP text contents into a single string result.
func joinTextContent(contents []mcp.Content) string {
	var out string
	for _, content := range contents {
		if textContent, ok := content.(mcp.TextContent); ok {
			if out != "" {
				out += "\n"
			}
			out += textContent.Text
		}
	}
	return out
}

// sessionManager owns the MCP client connection.
type sessionManager struct {
	config     ConnectionConfig
	mcpOptions []mcp.ClientOption

	mu          sync.RWMutex
	client      mcp.Connector
	connected   bool
	initialized bool
}

// connect establishes and initializes the connection to the MCP server.
func (m *sessionManager) connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	client, err := m.createClient()
	if err != nil {
		return fmt.Errorf("create MCP client: %w", err)
	}
	m.client = client
	m.connected = true

	initReq := &mcp.InitializeRequest{}
	initResp, err := m.client.Initialize(ctx, initReq)
	if err != nil {
		m.connected = false
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("close client after failed initialization: %v", closeErr)
		}
		return fmt.Errorf("initialize MCP session: %w", err)
	}
	m.initialized = true
	log.Infof("MCP session initialized: server=%s version=%s",
		initResp.ServerInfo.Name, initResp.ServerInfo.Version)
	return nil
}

// createClient creates the appropriate MCP client for the configured
// transport.
func (m *sessionManager) createClient() (mcp.Connector, error) {
	clientInfo := m.config.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}
	transportType, err := validateTransport(m.config.Transport)
	if err != nil {
		return nil, err
	}

	switch transportType {
	case transportStdio:
		config := mcp.StdioTransportConfig{
			ServerParams: mcp.StdioServerParameters{
				Command: m.config.Command,
				Args:    m.config.Args,
			},
			Timeout: m.config.Timeout,
		}
		return mcp.NewStdioClient(config, clientInfo)
	case transportStreamable:
		options := m.mcpOptions
		if len(m.config.Headers) > 0 {
			headers := http.Header{}
			for k, v := range m.config.Headers {
				headers.Set(k, v)
			}
			options = append(options, mcp.WithHTTPHeaders(headers))
		}
		return mcp.NewClient(m.config.ServerURL, clientInfo, options...)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", m.config.Transport)
	}
}

// listTools retrieves the list of available tools from the MCP server.
func (m *sessionManager) listTools(ctx context.Context) ([]mcp.Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || !m.initialized {
		return nil, fmt.Errorf("MCP session not connected or initialized")
	}
	listResp, err := m.client.ListTools(ctx, &mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return listResp.Tools, nil
}

// callTool executes a tool call on the MCP server.
func (m *sessionManager) callTool(ctx context.Context, name string, arguments map[string]any) ([]mcp.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || !m.initialized {
		return nil, fmt.Errorf("MCP session not connected or initialized")
	}
	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = arguments

	callResp, err := m.client.CallTool(ctx, callReq)
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", name, err)
	}
	if callResp.IsError {
		return nil, fmt.Errorf("tool %s returned error: %s", name, joinTextContent(callResp.Content))
	}
	return callResp.Content, nil
}

// close closes the MCP session and client connection.
func (m *sessionManager) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.connected = false
	m.initialized = false
	m.client = nil
	if err != nil {
		return fmt.Errorf("close MCP client: %w", err)
	}
	return nil
}
