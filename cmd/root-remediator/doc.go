// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// root-remediator distrusts or removes the "Superfish, Inc." root CA that
// the VisualDiscovery adware installed on Windows machines.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/root-remediator/cmd/root-remediator@latest
//
// # Usage
//
//	root-remediator [--config FILE] [--mode distrust|remove] COMMAND
//
// # Commands
//
//	run          Deliver a lifecycle event (--reason startup|install|enable) and remediate at most once
//	check        Report whether the registry gate calls for remediation
//	scan         List trust-store entries matching the Superfish root
//	fingerprint  Print SPKI and certificate SHA-256 fingerprints
//	mcp          Serve the same operations over MCP on stdio
//
// # Examples
//
// Distrust the root when the VisualDiscovery uninstall entry is present:
//
//	root-remediator run
//
// Delete every copy once the product key is gone, printing JSON:
//
//	root-remediator --mode remove run --json
//
// Dry run against a file store and a static registry:
//
//	root-remediator --config dry-run.yaml --platform windows scan
package main
