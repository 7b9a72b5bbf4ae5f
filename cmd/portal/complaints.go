package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"complaintportal/internal/app/api"
	"complaintportal/internal/app/identity"
)

func newComplaintsCmd(app *cliApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "complaints",
		Short: "File, list and resolve complaints.",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	cmd.AddCommand(
		newMineCmd(app, &asJSON),
		newCreateCmd(app, &asJSON),
		newListCmd(app, &asJSON),
		newStatusCmd(app, &asJSON),
		newStatsCmd(app, &asJSON),
	)
	return cmd
}

func newMineCmd(app *cliApp, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the complaints you filed (student).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAs(cmd, identity.RoleStudent, func(ctx context.Context, rt *runtime) error {
				list, err := rt.client.MyComplaints(ctx)
				if err != nil {
					return complaintFailure("Could not load complaints", err)
				}
				return printComplaints(cmd.OutOrStdout(), list, *asJSON, false)
			})
		},
	}
}

func newCreateCmd(app *cliApp, asJSON *bool) *cobra.Command {
	var category, priority, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a new complaint (student).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := api.ParseCategory(category)
			if err != nil {
				return err
			}
			p, err := api.ParsePriority(priority)
			if err != nil {
				return err
			}

			return app.runAs(cmd, identity.RoleStudent, func(ctx context.Context, rt *runtime) error {
				created, err := rt.client.CreateComplaint(ctx, api.NewComplaint{Category: c, Priority: p, Description: description})
				if err != nil {
					return complaintFailure("Failed to submit complaint", err)
				}
				if *asJSON {
					return writeJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Complaint submitted successfully! (id %s)\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(api.CategoryElectrical), "Electrical, Plumbing, Furniture, Cleaning or Other")
	cmd.Flags().StringVar(&priority, "priority", string(api.PriorityMedium), "Low, Medium or High")
	cmd.Flags().StringVar(&description, "description", "", "what is wrong")
	return cmd
}

func newListCmd(app *cliApp, asJSON *bool) *cobra.Command {
	var category, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every complaint, optionally filtered (admin).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(category, status)
			if err != nil {
				return err
			}

			return app.runAs(cmd, identity.RoleAdmin, func(ctx context.Context, rt *runtime) error {
				list, err := rt.client.ListComplaints(ctx, filter)
				if err != nil {
					return complaintFailure("Could not load complaints", err)
				}
				return printComplaints(cmd.OutOrStdout(), list, *asJSON, true)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "All", "category filter")
	cmd.Flags().StringVar(&status, "status", "All", "status filter")
	return cmd
}

func newStatusCmd(app *cliApp, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a complaint to Pending, In Progress or Resolved (admin).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.ParseStatus(args[1])
			if err != nil {
				return err
			}
			id := api.ComplaintID(args[0])

			return app.runAs(cmd, identity.RoleAdmin, func(ctx context.Context, rt *runtime) error {
				updated, err := rt.client.UpdateStatus(ctx, id, status)
				if err != nil {
					return complaintFailure("Failed to update status", err)
				}
				if *asJSON {
					return writeJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s is now %s.\n", id, status)
				return nil
			})
		},
	}
}

func newStatsCmd(app *cliApp, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count complaints by status and category (admin).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAs(cmd, identity.RoleAdmin, func(ctx context.Context, rt *runtime) error {
				list, err := rt.client.ListComplaints(ctx, api.Filter{})
				if err != nil {
					return complaintFailure("Could not load complaints", err)
				}
				stats := api.Summarize(list)
				if *asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				return printStats(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func parseFilter(category, status string) (api.Filter, error) {
	var f api.Filter
	if v := strings.TrimSpace(category); v != "" && !strings.EqualFold(v, "all") {
		c, err := api.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = string(c)
	}
	if v := strings.TrimSpace(status); v != "" && !strings.EqualFold(v, "all") {
		s, err := api.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = string(s)
	}
	return f, nil
}

// complaintFailure keeps local validation messages and otherwise prefers the service's message.
func complaintFailure(fallback string, err error) error {
	if re, ok := api.AsRemote(err); ok {
		if re.Kind == api.KindRejected && re.Message != "" {
			return fmt.Errorf("%s: %s", fallback, re.Message)
		}
		return fmt.Errorf("%s: %w", fallback, err)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printComplaints(w io.Writer, list []api.Complaint, asJSON, withStudent bool) error {
	if asJSON {
		if list == nil {
			list = []api.Complaint{}
		}
		return writeJSON(w, list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No complaints found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withStudent {
		fmt.Fprintln(tw, "ID\tSTUDENT\tCATEGORY\tPRIORITY\tSTATUS\tCREATED\tDESCRIPTION")
	} else {
		fmt.Fprintln(tw, "ID\tCATEGORY\tPRIORITY\tSTATUS\tCREATED\tDESCRIPTION")
	}
	for _, c := range list {
		created := "-"
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Local().Format("2006-01-02")
		}
		desc := strings.Join(strings.Fields(c.Description), " ")
		if withStudent {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.StudentName, c.Category, c.Priority, c.Status, created, desc)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Category, c.Priority, c.Status, created, desc)
		}
	}
	return tw.Flush()
}

func printStats(w io.Writer, st api.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", st.Total)
	for _, s := range api.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", s, st.ByStatus[s])
	}
	for _, c := range api.Categories {
		fmt.Fprintf(tw, "%s\t%d\n", c, st.ByCategory[c])
	}
	fmt.Fprintf(tw, "Open high priority\t%d\n", st.HighOpen)
	return tw.Flush()
}
