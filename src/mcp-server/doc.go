// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver serves root-remediator over the [MCP] protocol on stdio.
//
// Tools:
//   - check_condition: whether the host calls for remediation
//   - scan_trust_store: store entries matching the Superfish root
//   - fingerprint_certificate: SPKI and certificate SHA-256 of a certificate
//   - remediate: deliver a lifecycle event to the server's single session
//
// Resources:
//   - remediator://status: session state and ticket cache metrics
//   - remediator://guide: the remediation guide
//
// The server owns one [app.Env], so remediation runs at most once for the
// lifetime of the server process.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
