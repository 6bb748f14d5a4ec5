package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/plangate/internal/cli/formatter"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Author, submit and review daily plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(app),
		newPlanShowCmd(app),
		newPlanListCmd(app),
		newPlanPendingCmd(app),
		newPlanAddItemCmd(app),
		newPlanUpdateItemCmd(app),
		newPlanRemoveItemCmd(app),
		newPlanCompleteItemCmd(app),
		newPlanReorderCmd(app),
		newPlanNotesCmd(app),
		newPlanSubmitCmd(app),
		newPlanApproveCmd(app),
		newPlanRejectCmd(app),
		newPlanReopenCmd(app),
		newPlanExportCmd(app),
	)

	return cmd
}

func newPlanCreateCmd(app *App) *cobra.Command {
	var date, notes, owner string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft plan for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}
			plan, err := app.Plans.CreateDraft(cmd.Context(), app.Actor, owner, d, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created draft plan %s for %s (%s)\n",
				formatter.ShortID(plan.ID), domain.FormatDate(plan.PlanDate), plan.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the plan")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (admins only, default yourself)")

	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a plan and its items",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := resolvePlan(cmd.Context(), app, owner, date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlan(app.Translator, plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	var from, to, owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDateFlag(app, from)
			if err != nil {
				return err
			}
			if from == "" {
				start = start.AddDate(0, 0, -7)
			}
			end, err := parseDateFlag(app, to)
			if err != nil {
				return err
			}
			if to == "" {
				end = end.AddDate(0, 0, 7)
			}
			plans, err := app.Plans.ListForUser(cmd.Context(), ownerOr(app, owner), start, end)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList("Plans", plans))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (default a week ago)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (default a week ahead)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List submitted plans awaiting approval (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.ListPendingApproval(cmd.Context(), app.Actor)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList("Pending approval", plans))
			return nil
		},
	}
}

// itemFlags are the editable fields shared by add-item and update-item.
type itemFlags struct {
	title, description, priority, mandate, taskType string
	minutes                                         int
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Item title")
	cmd.Flags().IntVar(&f.minutes, "minutes", 0, "Estimated minutes")
	cmd.Flags().StringVar(&f.priority, "priority", string(domain.PriorityMedium), "Priority: urgente, alta, media, baja")
	cmd.Flags().StringVar(&f.description, "description", "", "Item description")
	cmd.Flags().StringVar(&f.mandate, "mandate", "", "Mandate ID")
	cmd.Flags().StringVar(&f.taskType, "task-type", "", "Task type ID")
}

func (f *itemFlags) apply(it *domain.DailyPlanItem) {
	it.Title = f.title
	it.Description = f.description
	it.EstimatedMinutes = f.minutes
	it.Priority = domain.Priority(strings.ToLower(f.priority))
	it.MandateID = domain.OptionalStr(f.mandate)
	it.TaskTypeID = domain.OptionalStr(f.taskType)
}

// patch builds an ItemPatch from the flags the user actually set.
func (f *itemFlags) patch(flags *pflag.FlagSet) domain.ItemPatch {
	var p domain.ItemPatch
	if flags.Changed("title") {
		p.Title = &f.title
	}
	if flags.Changed("description") {
		p.Description = &f.description
	}
	if flags.Changed("minutes") {
		p.EstimatedMinutes = &f.minutes
	}
	if flags.Changed("priority") {
		prio := domain.Priority(strings.ToLower(f.priority))
		p.Priority = &prio
	}
	if flags.Changed("mandate") {
		p.MandateID = &f.mandate
	}
	if flags.Changed("task-type") {
		p.TaskTypeID = &f.taskType
	}
	return p
}

func newPlanAddItemCmd(app *App) *cobra.Command {
	var date, owner string
	var fields itemFlags

	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Add an item to a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			item := &domain.DailyPlanItem{}
			fields.apply(item)
			if err := app.Plans.AddItem(ctx, app.Actor, plan.ID, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %q (%s, %s) to plan for %s\n",
				len(plan.Items)+1, item.Title, formatter.FormatMinutes(item.EstimatedMinutes),
				item.Priority, domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner; admins assigning work set this")
	fields.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

func newPlanUpdateItemCmd(app *App) *cobra.Command {
	var date, owner string
	var fields itemFlags

	cmd := &cobra.Command{
		Use:   "update-item ITEM",
		Short: "Edit a plan item; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, args[0], owner, date)
			if err != nil {
				return err
			}
			item, err := app.Plans.EditItem(ctx, app.Actor, id, fields.patch(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s: %q (%s, %s)\n", formatter.ShortID(id),
				item.Title, formatter.FormatMinutes(item.EstimatedMinutes), item.Priority)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date, enables numeric item references")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")
	fields.register(cmd)

	return cmd
}

func newPlanRemoveItemCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "remove-item ITEM",
		Short: "Remove an item from a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, args[0], owner, date)
			if err != nil {
				return err
			}
			if err := app.Plans.RemoveItem(ctx, app.Actor, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed item %s\n", formatter.ShortID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date, enables numeric item references")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanCompleteItemCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "complete-item ITEM",
		Short: "Mark a plan item done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, args[0], owner, date)
			if err != nil {
				return err
			}
			if err := app.Plans.CompleteItem(ctx, app.Actor, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed item %s\n", formatter.ShortID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date, enables numeric item references")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanReorderCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "reorder ITEM...",
		Short: "Set the order of every item in a plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			// Resolve every reference against the current order before moving anything.
			d := domain.FormatDate(plan.PlanDate)
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				id, err := resolveItemID(ctx, app, ref, plan.UserID, d)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if err := app.Plans.ReorderItems(ctx, app.Actor, plan.ID, ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d items in plan for %s\n", len(ids), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanNotesCmd(app *App) *cobra.Command {
	var date, owner, text string
	var adminNotes bool

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Replace the user or admin notes of a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			which := "notes"
			if adminNotes {
				which = "admin notes"
				err = app.Plans.UpdateAdminNotes(ctx, app.Actor, plan.ID, text)
			} else {
				err = app.Plans.UpdateUserNotes(ctx, app.Actor, plan.ID, text)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s for %s\n", which, domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")
	cmd.Flags().StringVar(&text, "text", "", "New notes text")
	cmd.Flags().BoolVar(&adminNotes, "admin-notes", false, "Edit the administrator notes instead")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newPlanSubmitCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a draft plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			plan, err = app.Plans.Submit(ctx, app.Actor, plan.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted plan for %s; time registration is open\n", domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanApproveCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a submitted plan (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			plan, err = app.Plans.Approve(ctx, app.Actor, plan.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved plan of %s for %s\n", plan.UserID, domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func newPlanRejectCmd(app *App) *cobra.Command {
	var date, owner, notes string

	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Reject a submitted or approved plan (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			plan, err = app.Plans.Reject(ctx, app.Actor, plan.ID, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected plan of %s for %s\n", plan.UserID, domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner")
	cmd.Flags().StringVar(&notes, "notes", "", "Why the plan was rejected")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func newPlanReopenCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "reopen",
		Short: "Move a rejected plan back to draft (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := resolvePlan(ctx, app, owner, date)
			if err != nil {
				return err
			}
			plan, err = app.Plans.Reopen(ctx, app.Actor, plan.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened plan for %s as draft\n", domain.FormatDate(plan.PlanDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}

func newPlanExportCmd(app *App) *cobra.Command {
	var date, owner string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a plan as plain text",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := resolvePlan(cmd.Context(), app, owner, date)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.ExportPlanText(plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&owner, "owner", "", "Plan owner (default yourself)")

	return cmd
}
