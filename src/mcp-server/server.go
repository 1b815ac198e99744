// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
)

// Serve runs the server over stdin and stdout until ctx is cancelled or the
// input ends. Cancellation is a clean shutdown.
func Serve(ctx context.Context, env *app.Env, version string, stdin io.Reader, stdout io.Writer) error {
	mcpServer, err := NewServerBuilder().
		WithEnv(env).
		WithVersion(version).
		WithDefaultTools().
		WithDefaultResources().
		Build()
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}

	stdioServer := server.NewStdioServer(mcpServer)

	env.Logger.Printf("root-remediator MCP server started (%s mode, %s store)", env.Mode, env.Config.Store.Backend)

	if err := stdioServer.Listen(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
