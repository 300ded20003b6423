// Package mcp is an HTTP client for MCP-style tool servers: JSON POSTs to
// /tools/list and /tools/call, with a plain /health probe.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

// Client talks to a single tool server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listToolsResponse struct {
	Tools []struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	} `json:"tools"`
}

// ListTools fetches the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	body, err := c.post(ctx, "/tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	var parsed listToolsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing tools response: %w", err)
	}

	tools := make([]domain.ToolDescriptor, 0, len(parsed.Tools))
	for _, t := range parsed.Tools {
		tools = append(tools, domain.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return tools, nil
}

type callToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallTool invokes one named tool. Server-reported failures come back with
// IsError set rather than an error return.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*domain.ToolCallResult, error) {
	payload, err := json.Marshal(callToolRequest{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("encoding tool call: %w", err)
	}

	body, err := c.post(ctx, "/tools/call", payload)
	if err != nil {
		return nil, fmt.Errorf("calling tool %s: %w", name, err)
	}

	var result domain.ToolCallResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing tool result: %w", err)
	}
	return &result, nil
}

// Ping reports whether the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
