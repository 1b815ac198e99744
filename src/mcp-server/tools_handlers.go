// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/remediate"
	x509certs "github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
)

type handlers struct {
	env *app.Env
}

type conditionResult struct {
	Remediate bool   `json:"remediate"`
	Mode      string `json:"mode"`
	Marker    string `json:"marker"`
	Gate      string `json:"gate"`
	Reason    string `json:"reason,omitempty"`
}

type matchResult struct {
	Nickname    string `json:"nickname"`
	Trust       string `json:"trust"`
	Fingerprint string `json:"fingerprint"`
}

type scanResult struct {
	Target    string        `json:"target"`
	Algorithm string        `json:"algorithm"`
	Matches   []matchResult `json:"matches"`
}

type outcomeResult struct {
	remediate.Outcome
	Error string `json:"error,omitempty"`
}

func (h *handlers) checkCondition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := h.env.Checker
	ok, err := c.Check(ctx)

	res := conditionResult{
		Remediate: ok,
		Mode:      h.env.Mode.String(),
		Marker:    c.Marker.String(),
		Gate:      c.Gate.String(),
	}
	if err != nil {
		res.Reason = err.Error()
	}
	return mcp.NewToolResultJSON(res)
}

func (h *handlers) scanTrustStore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matches, err := h.env.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to scan trust store: %v", err)), nil
	}

	res := scanResult{
		Target:    knownroot.Superfish.Name,
		Algorithm: h.env.Algorithm.String(),
		Matches:   make([]matchResult, 0, len(matches)),
	}
	for _, m := range matches {
		res.Matches = append(res.Matches, matchResult{
			Nickname:    m.Nickname,
			Trust:       m.Trust.String(),
			Fingerprint: m.Fingerprint.String(),
		})
	}
	return mcp.NewToolResultJSON(res)
}

func (h *handlers) fingerprintCertificate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := request.GetString("certificate", "")

	if input == "" {
		cert, err := knownroot.Superfish.Decode()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		r, err := app.Report(cert)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultJSON([]app.CertificateReport{r})
	}

	var data []byte
	if fileData, err := os.ReadFile(input); err == nil {
		data = fileData
	} else if cert, err := x509certs.New().DecodeBase64(input); err == nil {
		data = cert.Raw
	} else if decoded, err := base64.StdEncoding.DecodeString(input); err == nil {
		data = decoded
	} else {
		return mcp.NewToolResultError("failed to read certificate: not a valid file path or base64 data"), nil
	}

	reports, err := app.DecodeReports(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificate: %v", err)), nil
	}
	return mcp.NewToolResultJSON(reports)
}

func (h *handlers) remediate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reason := request.GetString("load_reason", string(remediate.ReasonStartup))
	out := h.env.Remediate(ctx, remediate.LoadReason(reason))

	res := outcomeResult{Outcome: out}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return mcp.NewToolResultJSON(res)
}
