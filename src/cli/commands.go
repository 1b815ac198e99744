// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/remediate"
	x509certs "github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
	mcpserver "github.com/H0llyW00dzZ/root-remediator/src/mcp-server"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		reason string
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deliver a lifecycle event and remediate at most once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.env.Remediate(cmd.Context(), remediate.LoadReason(reason))
			w := cmd.OutOrStdout()

			if asJSON {
				if err := writeJSON(w, outcomeView(out)); err != nil {
					return err
				}
			} else {
				printOutcome(w, out)
			}

			if strict && out.Status == remediate.StatusFailed {
				return fmt.Errorf("%w: %v", ErrRemediationFailed, out.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", string(remediate.ReasonStartup), `load reason: "startup", "install", "enable" or anything else to skip`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when remediation failed")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether this host calls for remediation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			c := opts.env.Checker

			ok, err := c.Check(cmd.Context())
			switch {
			case err != nil:
				warnColor.Fprintf(w, "not remediating: %v\n", err)
			case ok:
				successColor.Fprintf(w, "remediation needed (%s mode, %s %s)\n", opts.env.Mode, c.Marker, c.Gate)
			default:
				dimColor.Fprintf(w, "nothing to do (%s mode, %s not %s)\n", opts.env.Mode, c.Marker, c.Gate)
			}
			return nil
		},
	}
}

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List trust-store entries matching the Superfish root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := opts.env.Scan(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(matches) == 0 {
				successColor.Fprintf(w, "no entries match %s\n", knownroot.Superfish)
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{m.Nickname, m.Trust.String(), m.Fingerprint.String()})
			}
			errorColor.Fprintf(w, "%d entries match %s\n\n", len(matches), knownroot.Superfish)
			return renderTable(w, []string{"NICKNAME", "TRUST", strings.ToUpper(opts.env.Algorithm.String()) + " SHA-256"}, rows)
		},
	}
}

func newFingerprintCmd() *cobra.Command {
	var asJSON, asPEM bool

	cmd := &cobra.Command{
		Use:   "fingerprint [FILE]",
		Short: "Print the fingerprints of a certificate file, or of the embedded Superfish root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := x509certs.New()

			var certs []*x509.Certificate
			if len(args) == 0 {
				cert, err := knownroot.Superfish.Decode()
				if err != nil {
					return err
				}
				certs = append(certs, cert)
			} else {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("error reading input file: %w", err)
				}
				if certs, err = dec.DecodeMultiple(data); err != nil {
					return fmt.Errorf("error decoding certificate: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			if asPEM {
				_, err := w.Write(dec.EncodePEMBundle(certs))
				return err
			}

			reports, err := app.Reports(certs)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(w, reports)
			}

			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				known := "-"
				if r.KnownRoot != "" {
					known = r.KnownRoot
				}
				rows = append(rows, []string{r.Subject, r.SPKISHA256, r.CertSHA256, known})
			}
			return renderTable(w, []string{"SUBJECT", "SPKI SHA-256", "CERTIFICATE SHA-256", "KNOWN ROOT"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the fingerprints as JSON")
	cmd.Flags().BoolVar(&asPEM, "pem", false, "write the decoded certificates as a PEM bundle instead of fingerprints")
	cmd.MarkFlagsMutuallyExclusive("json", "pem")
	return cmd
}

func newMCPCmd(opts *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve check, scan, fingerprint and remediate over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Serve(cmd.Context(), opts.env, version, os.Stdin, os.Stdout)
		},
	}
}

// outcomeJSON is the printable form of a [remediate.Outcome].
type outcomeJSON struct {
	remediate.Outcome
	Error string `json:"error,omitempty"`
}

func outcomeView(out remediate.Outcome) outcomeJSON {
	v := outcomeJSON{Outcome: out}
	if out.Err != nil {
		v.Error = out.Err.Error()
	}
	return v
}

func printOutcome(w io.Writer, out remediate.Outcome) {
	line := fmt.Sprintf("%s (%s mode): matched=%d marked=%d invalidated=%t cleared=%d",
		out.Status, out.Mode, out.Matched, out.Marked, out.Invalidated, out.Cleared)

	switch out.Status {
	case remediate.StatusRemediated:
		successColor.Fprintln(w, line)
	case remediate.StatusFailed:
		errorColor.Fprintln(w, line)
	default:
		dimColor.Fprintln(w, line)
	}
	if out.Err != nil {
		errorColor.Fprintf(w, "  %v\n", out.Err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable writes rows as a markdown table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
