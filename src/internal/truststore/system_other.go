// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build !windows

package truststore

// OpenSystem opens the platform trust store. Only the Windows certificate
// store is supported.
func OpenSystem() (Store, error) { return nil, ErrUnsupported }
