package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/auth"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/members"
)

// NewMembersCommand groups the member backup commands.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Diff and apply member backups against the roster",
	}
	cmd.AddCommand(newMembersDiffCommand(rootOpts))
	cmd.AddCommand(newMembersApplyCommand(rootOpts))
	return cmd
}

func newMembersDiffCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "diff <backup.csv|backup.xlsx>",
		Short: "Compare a member backup with the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				rep, err := a.members.DiffFile(ctx, filepath.Base(args[0]), data)
				if err != nil {
					return err
				}
				if out != "" {
					blob, err := json.MarshalIndent(rep, "", "  ")
					if err != nil {
						return err
					}
					if err := os.WriteFile(out, blob, 0o600); err != nil {
						return err
					}
				}
				return emit(cmd.OutOrStdout(), rootOpts, rep, func(w io.Writer) error {
					created, updated := rep.Counts()
					fmt.Fprintf(w, "new %d, update %d, unchanged %d, ignored %d, skipped %d\n",
						created, updated, rep.Unchanged, rep.Ignored, rep.Skipped)
					for _, e := range rep.Entries {
						fmt.Fprintf(w, "%s %s\n", e.Kind, e.ID)
						for _, c := range e.Changes {
							prev := ""
							if c.Previous != nil {
								prev = *c.Previous
							}
							fmt.Fprintf(w, "  %s: %q -> %q\n", c.Field, prev, c.Next)
						}
					}
					for _, warn := range rep.Warnings {
						fmt.Fprintf(w, "warning: %s\n", warn)
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "also write the report as JSON for members apply")
	return cmd
}

func newMembersApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ids    []string
		fields []string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "apply <report.json>",
		Short: "Write selected entries of a diff report to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var rep members.Report
			if err := json.Unmarshal(blob, &rep); err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			if all {
				ids = ids[:0]
				for _, e := range rep.Entries {
					ids = append(ids, e.ID)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("nothing selected: pass --id or --all")
			}
			sel := make([]members.Selection, 0, len(ids))
			for _, id := range ids {
				sel = append(sel, members.Selection{ID: id, Fields: fields})
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				res, err := a.members.Apply(ctx, rep.Entries, sel)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts, res, func(w io.Writer) error {
					fmt.Fprintf(w, "created %d, updated %d\n", len(res.Created), res.Updated)
					for _, m := range res.Created {
						fmt.Fprintf(w, "  %s %s\n", m.MemberNumber, m.FullName())
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "entry ids to apply")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "limit to these fields (default all)")
	cmd.Flags().BoolVar(&all, "all", false, "apply every entry")
	return cmd
}

// NewHashTokenCommand prints a bcrypt hash for auth.token_hash.
func NewHashTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Hash an API token for auth.token_hash (generates one when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tok, hash string
			var err error
			if len(args) == 1 {
				tok = args[0]
				hash, err = auth.HashToken(tok)
			} else {
				tok, hash, err = auth.IssueToken()
			}
			if err != nil {
				return err
			}
			out := map[string]string{"hash": hash}
			if len(args) == 0 {
				out["token"] = tok
			}
			return emit(cmd.OutOrStdout(), rootOpts, out, func(w io.Writer) error {
				if t, ok := out["token"]; ok {
					fmt.Fprintf(w, "token: %s\n", t)
				}
				fmt.Fprintf(w, "hash:  %s\n", hash)
				return nil
			})
		},
	}
}
