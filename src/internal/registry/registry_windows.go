// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build windows

package registry

import (
	"context"
	"errors"
	"fmt"

	winreg "golang.org/x/sys/windows/registry"
)

type system struct{}

// System returns the Windows registry.
func System() Reader { return system{} }

// HasChild opens path\child read-only; a missing key is not an error.
func (system) HasChild(ctx context.Context, root Root, path, child string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var hive winreg.Key
	switch root {
	case LocalMachine:
		hive = winreg.LOCAL_MACHINE
	case CurrentUser:
		hive = winreg.CURRENT_USER
	default:
		return false, fmt.Errorf("registry: unknown root %v", root)
	}

	k, err := winreg.OpenKey(hive, path+`\`+child, winreg.QUERY_VALUE)
	if errors.Is(err, winreg.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("registry: open %s: %w", Join(root, path, child), err)
	}
	k.Close()
	return true, nil
}
