// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package session invalidates cached secure-session material after a trust
// change, so that sessions negotiated while a compromised root was trusted
// cannot be resumed.
//
// It provides an in-memory LRU [TicketCache] usable as a
// [crypto/tls.ClientSessionCache], an on-disk [DirCache], and [Multi] to
// tear down several caches at once.
package session
