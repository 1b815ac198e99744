// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for root-remediator.
//
// Commands:
//
//	run          deliver a lifecycle event and remediate at most once
//	check        report whether this host calls for remediation
//	scan         list trust-store entries matching the Superfish root
//	fingerprint  print the fingerprints of a certificate file
//	mcp          serve the same operations over MCP on stdio
//
// Every command except fingerprint loads the configuration first; see
// package config for the file format.
package cli
