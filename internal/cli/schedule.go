package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/schedule"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

type detection struct {
	File      string            `json:"file"`
	Delimiter string            `json:"delimiter"`
	Columns   map[string]string `json:"columns"`
	Unknown   []string          `json:"unknown,omitempty"`
}

func delimiterName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	}
	return string(r)
}

// NewDetectCommand reports the delimiter and header mapping of a schedule file.
func NewDetectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Show the detected delimiter and column mapping of a delimited file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, delim := textnorm.PrepareDelimited(data)
			line, _, _ := strings.Cut(text, "\n")
			d := detection{File: filepath.Base(args[0]), Delimiter: delimiterName(delim), Columns: map[string]string{}}
			for _, h := range strings.Split(strings.TrimRight(line, "\r"), string(delim)) {
				h = strings.Trim(strings.TrimSpace(h), `"`)
				if h == "" {
					continue
				}
				if f, ok := schedule.HeaderAliases.Lookup(h); ok {
					d.Columns[h] = f
				} else {
					d.Unknown = append(d.Unknown, h)
				}
			}
			return emit(cmd.OutOrStdout(), rootOpts, d, func(w io.Writer) error {
				fmt.Fprintf(w, "delimiter: %s\n", d.Delimiter)
				for h, f := range d.Columns {
					fmt.Fprintf(w, "%s -> %s\n", h, f)
				}
				if len(d.Unknown) > 0 {
					fmt.Fprintf(w, "ignored: %s\n", strings.Join(d.Unknown, ", "))
				}
				return nil
			})
		},
	}
}

// NewImportCommand merges a schedule file into the ephemeral cache.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var team string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an .ics, .csv or .xlsx schedule into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				rep, err := a.engine.ImportFile(ctx, filepath.Base(args[0]), data, team)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts, rep, func(w io.Writer) error {
					fmt.Fprintf(w, "added %d, duplicates %d, %s\n", rep.Added, rep.Duplicates, rep.Summary)
					for _, warn := range rep.Warnings {
						fmt.Fprintf(w, "warning: %s\n", warn)
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "club team the file belongs to")
	return cmd
}

func filterFlags(cmd *cobra.Command, f *schedule.Filter) {
	cmd.Flags().StringVar(&f.From, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.To, "to", "", "last date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.ClubTeam, "team", "", "only fixtures of this club team")
}

func writeTable(w io.Writer, view []schedule.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tHOME\tAWAY\tCATEGORY\tSTATUS\tORIGIN")
	for _, r := range view {
		status := string(r.Status)
		if r.HomeScore != nil && r.AwayScore != nil {
			status = fmt.Sprintf("%d:%d", *r.HomeScore, *r.AwayScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.Date, r.Time, r.HomeTeam, r.AwayTeam, r.Category, status, r.Origin)
	}
	return tw.Flush()
}

// NewListCommand prints the unified view.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var f schedule.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored and imported fixtures, sorted by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				view, err := a.engine.View(ctx, f)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts, view, func(w io.Writer) error {
					return writeTable(w, view)
				})
			})
		},
	}
	filterFlags(cmd, &f)
	return cmd
}

// NewExportCommand writes the unified view as ics or csv.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		f      schedule.Filter
		as     string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule as .ics or .csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if as != "ics" && as != "csv" {
				return fmt.Errorf("invalid --as %q: must be ics or csv", as)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				view, err := a.engine.View(ctx, f)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if output != "" {
					file, err := os.Create(output)
					if err != nil {
						return err
					}
					defer file.Close()
					w = file
				}
				if as == "ics" {
					return schedule.WriteICS(w, view, a.engine.Location())
				}
				return schedule.WriteCSV(w, view)
			})
		},
	}
	filterFlags(cmd, &f)
	cmd.Flags().StringVar(&as, "as", "ics", "file format (ics|csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
