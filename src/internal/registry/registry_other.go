// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build !windows

package registry

import "context"

type system struct{}

// System returns a registry that fails every lookup with [ErrUnsupported].
func System() Reader { return system{} }

// HasChild implements [Reader].
func (system) HasChild(context.Context, Root, string, string) (bool, error) {
	return false, ErrUnsupported
}
