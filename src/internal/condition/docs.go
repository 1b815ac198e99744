// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package condition gates remediation on host state: the platform must be
// Windows, and a registry marker left by the offending installer must be
// present or absent depending on the configured [Gate]. Lookup failures
// fail closed.
package condition
