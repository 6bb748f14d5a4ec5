package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/plangate/internal/cli/formatter"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/alexanderramin/plangate/internal/repository"
	"github.com/alexanderramin/plangate/internal/service"
	"github.com/spf13/cobra"
)

func newHoursCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Register hours and check the registration gate",
	}

	cmd.AddCommand(
		newHoursCheckCmd(app),
		newHoursWeekCmd(app),
		newHoursLogCmd(app),
		newHoursListCmd(app),
	)

	return cmd
}

func newHoursCheckCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether hours can be registered for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}
			res := app.Gate.CheckCanRegisterHours(cmd.Context(), app.Actor.UserID, d, app.Actor.Admin)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDecision(app.Translator, res, d, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to check (YYYY-MM-DD, default today)")

	return cmd
}

func newHoursWeekCmd(app *App) *cobra.Command {
	var from string
	var days int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Check the registration gate for a run of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDateFlag(app, from)
			if err != nil {
				return err
			}
			if from == "" {
				// Monday of the current week.
				offset := (int(start.Weekday()) + 6) % 7
				start = start.AddDate(0, 0, -offset)
			}
			if days < 1 {
				return fmt.Errorf("--days must be positive")
			}
			decisions, err := app.Gate.CheckRange(cmd.Context(), app.Actor.UserID, start, start.AddDate(0, 0, days-1), app.Actor.Admin)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWeek(decisions))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (default this week's Monday)")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to check")

	return cmd
}

func newHoursLogCmd(app *App) *cobra.Command {
	var date, description, mandate, taskType, item string
	var minutes int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Register hours for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			d, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}

			opts := service.RegisterOptions{}
			if item != "" {
				opts.LinkItemID, err = resolveItemID(ctx, app, item, "", domain.FormatDate(d))
				if err != nil {
					return err
				}
			}

			entry := &domain.TimeEntry{
				UserID:      app.Actor.UserID,
				EntryDate:   d,
				Minutes:     minutes,
				Description: description,
				MandateID:   domain.OptionalStr(mandate),
				TaskTypeID:  domain.OptionalStr(taskType),
			}
			res, err := app.Entries.RegisterHours(ctx, app.Actor, entry, opts)

			var blocked *service.BlockedError
			if errors.As(err, &blocked) {
				return presentBlocked(cmd, app, blocked)
			}
			if err != nil {
				return err
			}

			if res.Degraded() {
				fmt.Fprintln(out, formatter.StyleYellow.Render(app.Translator.Sprintf(locale.MsgValidationSkipped)))
			}
			fmt.Fprintln(out, app.Translator.Sprintf(locale.MsgRegistered, minutes, app.Translator.Date(d)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date worked (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Minutes worked")
	cmd.Flags().StringVar(&description, "description", "", "What was done")
	cmd.Flags().StringVar(&mandate, "mandate", "", "Mandate ID")
	cmd.Flags().StringVar(&taskType, "task-type", "", "Task type ID")
	cmd.Flags().StringVar(&item, "item", "", "Plan item to complete with this entry (position or ID)")
	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

// presentBlocked shows a gate denial. A user who declines gets exit status 0;
// when nobody could be asked the denial is returned so scripts see a failure.
// Accepting creates the draft plan and prints where to finish it.
func presentBlocked(cmd *cobra.Command, app *App, blocked *service.BlockedError) error {
	ctx := cmd.Context()
	p := app.presenter(cmd).Present(ctx, PresentInput{
		Open:   true,
		Date:   blocked.Date,
		Reason: blocked.Result.Reason,
	})
	logger.Debug("registration blocked", "user_id", blocked.UserID, "date", domain.FormatDate(blocked.Date), "choice", p.Choice.String())

	if p.Choice != ChoiceCreatePlan {
		if !p.Asked {
			return blocked
		}
		return nil
	}
	_, err := app.Plans.CreateDraft(ctx, app.Actor, blocked.UserID, blocked.Date, "")
	if err != nil && !errors.Is(err, repository.ErrDuplicatePlan) {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), app.Translator.Sprintf(locale.MsgPromptRoute, p.Route))
	return nil
}

func newHoursListCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered hours for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}
			entries, err := app.Entries.ListForDate(cmd.Context(), app.Actor.UserID, d)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default today)")

	return cmd
}
