// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
	"github.com/H0llyW00dzZ/root-remediator/src/mcp-server/templates"
)

// serverName is reported to clients during the handshake.
const serverName = "root-remediator"

// ToolDefinition pairs a tool with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// ServerDependencies holds everything [ServerBuilder.Build] wires into the
// server.
type ServerDependencies struct {
	Env          *app.Env
	Version      string
	Embed        templates.EmbedFS
	Tools        []ToolDefinition
	Resources    []server.ServerResource
	Instructions string
}

// ServerBuilder constructs the [MCP] server using a fluent interface.
//
// Example:
//
//	s, err := NewServerBuilder().
//	    WithEnv(env).
//	    WithVersion(version).
//	    WithDefaultTools().
//	    WithDefaultResources().
//	    Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a builder reading templates from [templates.MagicEmbed].
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{deps: ServerDependencies{Embed: templates.MagicEmbed}}
}

// WithEnv sets the components every tool operates on.
func (b *ServerBuilder) WithEnv(env *app.Env) *ServerBuilder {
	b.deps.Env = env
	return b
}

// WithVersion sets the version reported to clients.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithEmbed replaces the template filesystem.
func (b *ServerBuilder) WithEmbed(fs templates.EmbedFS) *ServerBuilder {
	b.deps.Embed = fs
	return b
}

// WithTools adds tool definitions.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithResources adds resources.
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// WithInstructions sets the instructions sent during initialization. When
// unset, Build loads them from the embedded templates.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// WithDefaultTools adds the remediation tools. WithEnv must be called first.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithTools(createTools(&handlers{env: b.deps.Env})...)
}

// WithDefaultResources adds the status and guide resources. WithEnv must be
// called first.
func (b *ServerBuilder) WithDefaultResources() *ServerBuilder {
	return b.WithResources(createResources(b.deps.Env, b.deps.Embed)...)
}

// Build creates the server.
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if b.deps.Env == nil {
		return nil, errors.New("mcpserver: no environment")
	}

	instructions := b.deps.Instructions
	if instructions == "" && b.deps.Embed != nil {
		data, err := b.deps.Embed.ReadFile(templates.Instructions)
		if err != nil {
			return nil, err
		}
		instructions = string(data)
	}

	s := server.NewMCPServer(
		serverName,
		b.deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(instructions),
	)

	for _, tool := range b.deps.Tools {
		s.AddTool(tool.Tool, tool.Handler)
	}
	for _, resource := range b.deps.Resources {
		s.AddResource(resource.Resource, resource.Handler)
	}
	return s, nil
}
