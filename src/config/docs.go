// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the remediator configuration from JSON or YAML,
// validates it against an embedded JSON schema and applies environment
// overrides.
//
// Example YAML:
//
//	mode: remove
//	fingerprint: spki
//	timeoutSeconds: 5
//	store:
//	  backend: file
//	  path: /var/lib/remediator/cert9.yaml
//	sessionCache:
//	  dir: /var/cache/remediator/sessions
//	registry:
//	  static: true
//	  keys:
//	    - HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Superfish Inc. VisualDiscovery
package config
