// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/remediate"
)

// createTools defines the remediation tools.
func createTools(h *handlers) []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("check_condition",
				mcp.WithDescription("Report whether this host calls for remediation: Windows, with the registry marker for the configured mode in the expected state. Read-only."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: h.checkCondition,
		},
		{
			Tool: mcp.NewTool("scan_trust_store",
				mcp.WithDescription("List trust-store entries whose fingerprint equals the Superfish, Inc. root. Read-only."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: h.scanTrustStore,
		},
		{
			Tool: mcp.NewTool("fingerprint_certificate",
				mcp.WithDescription("Compute SPKI and certificate SHA-256 fingerprints and flag known compromised roots"),
				mcp.WithString("certificate",
					mcp.Description("Certificate file path or base64-encoded certificate data (PEM, DER or PKCS#7). Omit to fingerprint the embedded Superfish root."),
				),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: h.fingerprintCertificate,
		},
		{
			Tool: mcp.NewTool("remediate",
				mcp.WithDescription("Deliver a lifecycle event. The first qualifying event distrusts or removes the Superfish root and clears cached sessions; later events do nothing."),
				mcp.WithString("load_reason",
					mcp.Description("Lifecycle event: startup, install or enable run remediation; anything else is skipped"),
					mcp.DefaultString(string(remediate.ReasonStartup)),
				),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
			),
			Handler: h.remediate,
		},
	}
}
