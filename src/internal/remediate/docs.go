// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package remediate neutralizes a known compromised root CA at most once per
// process.
//
// A [Session] is created by the caller and handed every lifecycle event. The
// first event whose load reason qualifies moves it out of [Uninitialized];
// after that run, whatever its result, it stays [Initialized]:
//
//	Uninitialized -> Scanning -> Remediating -> Invalidating -> Initialized
//
// In [Distrust] mode the embedded root is imported into the trust store and
// marked untrusted for SSL, email and object signing. In [Remove] mode every
// live store entry whose fingerprint equals the root's is marked for
// deletion. Session caches are torn down only after a change was flushed.
//
// Failures never escape [Session.Main]. They are logged once and returned in
// the [Outcome] as an [*Error] carrying the stage and one of
// [ErrEnvironmentUnavailable], [ErrMalformedDescriptor], [ErrStoreMutation]
// or [ErrSessionTeardown].
//
// Example:
//
//	s := remediate.NewSession(remediate.Config{
//		Mode:        remediate.Distrust,
//		Condition:   condition.ForDistrust(registry.System()),
//		Store:       store,
//		Invalidator: tickets,
//		Logger:      log,
//	})
//	out := s.Main(ctx, remediate.Options{LoadReason: remediate.ReasonStartup})
package remediate
