// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix derives the program name shown in usage text.
//
// The remediator usually runs as root-remediator.exe on Windows, sometimes
// from a path with foreign separators (a Windows path handed to a Unix
// build for dry runs). [ExecutableName] reduces either form to a bare name:
//
//   - Linux/macOS: "/usr/local/bin/root-remediator" → "root-remediator"
//   - Windows: "C:\Tools\root-remediator.exe" → "root-remediator"
//   - Fallback: empty os.Args → [DefaultName]
package posix
