// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package registry provides read-only existence checks against a
// hierarchical key store: the Windows registry on Windows, or an in-memory
// [Static] snapshot for dry runs and tests.
package registry
