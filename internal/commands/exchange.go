package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"calterm/internal/exchange"
)

const (
	formatICS = "ics"
	formatCSV = "csv"
)

type exportOptions struct {
	Format string
	Out    string
}

func addExport(topLevel *cobra.Command) {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write every event as iCalendar or CSV",
		Example: `
calterm export > calendar.ics
calterm export --format csv --out events.csv
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			format := strings.ToLower(eo.Format)
			if format != formatICS && format != formatCSV {
				return fmt.Errorf("unknown format %q, want ics or csv", eo.Format)
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var w io.Writer = cmd.OutOrStdout()
			if eo.Out != "" {
				f, createErr := os.Create(eo.Out)
				if createErr != nil {
					return fmt.Errorf("create %s: %w", eo.Out, createErr)
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if format == formatCSV {
				return exchange.ExportCSV(w, s.store.Events().Get())
			}
			return exchange.ExportICS(w, s.store.Snapshot(), s.cfg.Location(), time.Now())
		},
	}

	cmd.Flags().StringVar(&eo.Format, "format", formatICS, "output format: ics or csv")
	cmd.Flags().StringVarP(&eo.Out, "out", "o", "", "file to write (default: stdout)")

	topLevel.AddCommand(cmd)
}

type importOptions struct {
	Format string
}

func addImport(topLevel *cobra.Command) {
	im := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "add events from an iCalendar or CSV file",
		Long: `Add events from a file. CSV files need a header with date and title
columns; time, category and notes are optional. The format follows the file
extension unless --format is given.`,
		Example: `
calterm import events.csv
calterm import holidays.ics
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format := strings.ToLower(im.Format)
			if format == "" {
				format = formatCSV
				if strings.EqualFold(filepath.Ext(path), ".ics") {
					format = formatICS
				}
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var result exchange.ImportResult
			switch format {
			case formatCSV:
				result, err = exchange.ImportCSV(f, s.store)
			case formatICS:
				result, err = exchange.ImportICS(f, s.store, s.cfg.Location())
			default:
				err = errors.New("unknown format " + format)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, color.GreenString("Imported %d events", result.Created))
			if result.Skipped > 0 {
				_, _ = fmt.Fprintln(out, color.YellowString("Skipped %d:", result.Skipped))
				for _, msg := range result.Errors {
					_, _ = fmt.Fprintln(out, "  "+msg)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&im.Format, "format", "", "input format: ics or csv")

	topLevel.AddCommand(cmd)
}
