// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/session"
	"github.com/H0llyW00dzZ/root-remediator/src/mcp-server/templates"
)

// Resource URIs.
const (
	StatusURI = "remediator://status"
	GuideURI  = "remediator://guide"
)

type statusResult struct {
	State   string                     `json:"state"`
	Mode    string                     `json:"mode"`
	Backend string                     `json:"backend"`
	Tickets session.TicketCacheMetrics `json:"tickets"`
}

func createResources(env *app.Env, fs templates.EmbedFS) []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(StatusURI, "Remediation status",
				mcp.WithResourceDescription("Session state and TLS session ticket cache metrics"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				data, err := json.MarshalIndent(statusResult{
					State:   env.Session().State().String(),
					Mode:    env.Mode.String(),
					Backend: env.Config.Store.Backend,
					Tickets: env.Tickets.Metrics(),
				}, "", "  ")
				if err != nil {
					return nil, fmt.Errorf("failed to marshal status: %w", err)
				}
				return []mcp.ResourceContents{
					mcp.TextResourceContents{URI: StatusURI, MIMEType: "application/json", Text: string(data)},
				}, nil
			},
		},
		{
			Resource: mcp.NewResource(GuideURI, "Remediation guide",
				mcp.WithResourceDescription("Modes, registry gates, fingerprints and failure kinds"),
				mcp.WithMIMEType("text/markdown"),
			),
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				data, err := fs.ReadFile(templates.RemediationGuide)
				if err != nil {
					return nil, fmt.Errorf("failed to read remediation guide: %w", err)
				}
				return []mcp.ResourceContents{
					mcp.TextResourceContents{URI: GuideURI, MIMEType: "text/markdown", Text: string(data)},
				}, nil
			},
		},
	}
}
