// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package fingerprint computes content-derived identities for [X.509]
// certificates. Two certificates match only when their fingerprints are
// byte-for-byte equal, and the same [Algorithm] must be used on both sides.
//
// [X.509]: https://grokipedia.com/page/X.509
package fingerprint
