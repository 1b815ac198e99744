// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/gc"
)

// DefaultPrefix is prepended to every line written by [CLILogger].
const DefaultPrefix = "root-remediator: "

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// This interface supports both CLI and [MCP] server modes, allowing seamless
// switching between human-readable output and structured logging.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// Every line carries a fixed prefix, and nothing is written unless debug
// output is enabled.
type CLILogger struct {
	logger *log.Logger
	debug  bool
}

// NewCLILogger creates a new CLI logger writing prefixed lines to stderr.
// Timestamps are disabled. When debug is false the logger is silent.
func NewCLILogger(prefix string, debug bool) *CLILogger {
	l := log.New(os.Stderr, prefix, 0)
	return &CLILogger{logger: l, debug: debug}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) {
	if !c.debug {
		return
	}
	c.logger.Printf(format, v...)
}

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) {
	if !c.debug {
		return
	}
	c.logger.Println(v...)
}

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Debug reports whether the logger writes anything.
func (c *CLILogger) Debug() bool { return c.debug }

// MCPLogger implements Logger for [MCP] server mode.
// It suppresses output by default since MCP communication happens over stdio,
// but can be configured to write structured logs to a separate destination.
//
// MCPLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type MCPLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
}

// NewMCPLogger creates a new [MCP] logger.
// By default, it's silent (output suppressed) to avoid interfering with [MCP] stdio protocol.
// Set silent=false and provide a writer to enable structured logging to a file or stderr.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func NewMCPLogger(writer io.Writer, silent bool) *MCPLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &MCPLogger{
		writer: writer,
		silent: silent,
	}
}

// Printf formats and logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (m *MCPLogger) Printf(format string, v ...any) {
	if m.silent {
		return
	}
	m.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (m *MCPLogger) Println(v ...any) {
	if m.silent {
		return
	}
	m.write(fmt.Sprint(v...))
}

// write encodes one JSON line into a pooled buffer and flushes it under the lock.
func (m *MCPLogger) write(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	data, _ := json.Marshal(map[string]any{
		"level":   "info",
		"message": msg,
	})
	buf.Write(data)
	buf.WriteByte('\n')

	m.mu.Lock()
	m.writer.Write(buf.Bytes())
	m.mu.Unlock()
}

// SetOutput sets the output destination for the MCP logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (m *MCPLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}
