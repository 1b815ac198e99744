// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// DefaultName is returned when os.Args carries no program path.
const DefaultName = "root-remediator"

// ExecutableName returns the base name of os.Args[0] with any .exe suffix
// removed. Both '/' and '\' are treated as separators on every platform.
func ExecutableName() string {
	if len(os.Args) == 0 {
		return DefaultName
	}
	return baseName(os.Args[0])
}

func baseName(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return DefaultName
	}

	name := parts[len(parts)-1]
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		name = name[:len(name)-4]
	}
	if name == "" || name == "." {
		return DefaultName
	}
	return name
}
