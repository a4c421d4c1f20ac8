package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khoahotran/cpd-tracker/internal/app"
	exportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/export"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/auth"
	"github.com/khoahotran/cpd-tracker/pkg/insightclient"
)

func complianceCmd(opts *options) *cobra.Command {
	var (
		year   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Show hours against the compliance thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				snap, err := a.Compliance.ExecuteSnapshot(ctx, year)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, snap)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "REQUIREMENT\tHOURS\tREQUIRED\tPROGRESS\tSTATUS")
				for _, row := range []struct {
					name string
					m    compliance.Metric
				}{
					{"Total", snap.Total},
					{"Verifiable", snap.Verifiable},
					{"Ethics", snap.Ethics},
				} {
					fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.0f%%\t%s\n", row.name, row.m.Hours, row.m.Required, row.m.Percent, row.m.Level)
				}
				fmt.Fprintf(tw, "Non-verifiable\t%.1f\t\t\t\n", snap.NonVerifiable)
				if err := tw.Flush(); err != nil {
					return err
				}
				status := "NOT COMPLIANT"
				if snap.Compliant {
					status = "COMPLIANT"
				}
				fmt.Fprintf(out, "\n%d activities, %s\n", snap.Activities, status)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only count activities dated in this year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func warningsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "warnings",
		Short: "List compliance warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				warnings, err := a.Compliance.ExecuteWarnings(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), warnings)
			})
		},
	}
}

func reportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the CPD report as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out, err := a.Report.ExecuteRender(ctx)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, out.FileName, out.PDF)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")
	return cmd
}

func exportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "export {csv|manifest|tax}",
		Short:     "Export completed activities",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "manifest", "tax"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var (
					f   *exportUC.File
					err error
				)
				switch args[0] {
				case "csv":
					f, err = a.Export.ExecuteCSV(ctx)
				case "manifest":
					f, err = a.Export.ExecuteEvidenceManifest(ctx)
				case "tax":
					f, err = a.Export.ExecuteTaxSubmission(ctx)
				default:
					return fmt.Errorf("unknown export %q", args[0])
				}
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, f.Name, f.Content)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")
	return cmd
}

func backupCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, import or upload backups",
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out, err := a.Backup.ExecuteExport(ctx)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, out.FileName, out.Content)
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a backup; present sections replace the stored ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out, err := a.Backup.ExecuteImport(ctx, raw)
				if err != nil {
					return err
				}
				names := make([]string, len(out.Replaced))
				for i, b := range out.Replaced {
					names[i] = string(b)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", strings.Join(names, ", "))
				return nil
			})
		},
	}

	upload := &cobra.Command{
		Use:   "upload",
		Short: "Upload a backup to the configured media storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				url, err := a.Backup.ExecuteUpload(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}

	cmd.AddCommand(export, importCmd, upload)
	return cmd
}

func usageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show stored bytes per bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out, err := a.Backup.ExecuteUsage(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

type remoteFlags struct {
	server string
	token  string
}

func (r *remoteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.server, "server", "http://localhost:8080", "CPD tracker server URL")
	cmd.Flags().StringVar(&r.token, "token", os.Getenv("CPD_TOKEN"), "Bearer token (defaults to $CPD_TOKEN)")
}

func (r *remoteFlags) client() *insightclient.Client {
	return insightclient.New(r.server, insightclient.WithToken(r.token))
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func analyzeCmd() *cobra.Command {
	var (
		remote   remoteFlags
		mimeType string
	)
	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Extract activity details from a certificate image via a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mt := mimeType
			if mt == "" {
				mt = imageTypes[strings.ToLower(filepath.Ext(args[0]))]
			}
			data, err := remote.client().Analyze(cmd.Context(), filepath.Base(args[0]), mt, content)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	remote.bind(cmd)
	cmd.Flags().StringVar(&mimeType, "type", "", "Mime type (guessed from the extension when empty)")
	return cmd
}

func chatCmd() *cobra.Command {
	var remote remoteFlags
	cmd := &cobra.Command{
		Use:   "chat MESSAGE",
		Short: "Ask the CPD assistant on a running server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := remote.client().Chat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	remote.bind(cmd)
	return cmd
}

// describe turns client errors into a message naming the failure kind.
func describe(err error) error {
	var se *insightclient.StatusError
	switch {
	case errors.Is(err, insightclient.ErrUnsupportedType):
		return err
	case errors.Is(err, insightclient.ErrNetwork):
		return fmt.Errorf("could not reach the server: %w", err)
	case errors.As(err, &se), errors.Is(err, insightclient.ErrRequestFailed):
		return fmt.Errorf("server rejected the request: %w", err)
	case errors.Is(err, insightclient.ErrMalformedResponse):
		return fmt.Errorf("server sent an unreadable reply: %w", err)
	}
	return err
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print a bcrypt hash for OWNER_PASSWORD_HASH",
		Long:  "Hashes PASSWORD, or $OWNER_PASSWORD when no argument is given, for the owner login.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("OWNER_PASSWORD")
			if len(args) == 1 {
				password = args[0]
			}
			if password == "" {
				return errors.New("no password given and OWNER_PASSWORD is empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("cannot hash password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OWNER_PASSWORD_HASH=%s\n", hash)
			return nil
		},
	}
}
