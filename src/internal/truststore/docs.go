// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package truststore abstracts the host-owned certificate trust store.
//
// A [Store] can construct trust objects for arbitrary certificates, stage
// per-usage trust on them, enumerate its current members, and stage members
// for permanent deletion. Nothing is durable until [Store.Flush] returns.
//
// Two backends are provided:
//   - [FileStore]: an NSS-style trust database persisted as YAML.
//   - The Windows system store (ROOT and Disallowed), on Windows builds only.
//
// Trust strings use the NSS letter encoding, three comma-separated fields for
// SSL, email and object signing: "C,C,C" trusts a root, "p,p,p" explicitly
// distrusts it.
package truststore
