// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./root-remediator"}, expected: "root-remediator"},
		{name: "Just filename", args: []string{"remediate"}, expected: "remediate"},
		{name: "Unix absolute path", args: []string{"/usr/local/bin/root-remediator"}, expected: "root-remediator"},
		{name: "Windows path with .exe", args: []string{`C:\Program Files\Remediator\root-remediator.exe`}, expected: "root-remediator"},
		{name: "Upper-case extension", args: []string{`C:\TOOLS\REMEDIATE.EXE`}, expected: "REMEDIATE"},
		{name: "Mixed separators", args: []string{`C:\tools/bin\remediate.exe`}, expected: "remediate"},
		{name: "Bare extension", args: []string{".exe"}, expected: ".exe"},
		{name: "Trailing separator", args: []string{"/opt/remediator/"}, expected: "remediator"},
		{name: "Empty args", args: []string{}, expected: DefaultName},
		{name: "Empty first arg", args: []string{""}, expected: DefaultName},
		{name: "Root only", args: []string{"/"}, expected: DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = origArgs }()

			assert.Equal(t, tt.expected, ExecutableName())
		})
	}
}
