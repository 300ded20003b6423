package domain

import "encoding/json"

// ToolDescriptor describes a named tool exposed by an external tool server.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ServerName  string          `json:"serverName"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolContent is one piece of a tool call result.
type ToolContent struct {
	Type     string `json:"type"` // text, image, resource
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolCallResult is the outcome of invoking a tool. IsError carries failures
// as data instead of an error return, where the server supports it.
type ToolCallResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolInvocation records which tool ran during a pipeline turn and what it
// produced.
type ToolInvocation struct {
	Tool   string
	Server string
	Data   *ToolCallResult
}

// ToolServerInfo is the public view of a configured tool server.
type ToolServerInfo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}
