package cli

import (
	"context"
	"os"
	"time"

	"github.com/alexanderramin/plangate/internal/appstate"
	"github.com/alexanderramin/plangate/internal/config"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/alexanderramin/plangate/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// skipSetup marks commands that must work without a database.
const skipSetup = "plangate/skip-setup"

// Options are the global flag values.
type Options struct {
	UserID string
	Admin  bool
	Locale string
	Debug  bool
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans   service.PlanService
	Gate    service.GateService
	Entries service.TimeEntryService

	State      *appstate.Store
	Hub        *realtime.Hub
	Translator *locale.Translator
	Actor      service.Actor
	Debug      bool

	// PlanRoute is the plan-authoring route template; {date} is replaced.
	PlanRoute string
	// DBPath is the SQLite file the watch command follows. Empty for Postgres.
	DBPath string
	// ListenDSN is the Postgres connection the watch command listens on.
	// Empty for SQLite.
	ListenDSN string

	// Presenter overrides presenter selection when set.
	Presenter     Presenter
	Confirm       ConfirmFunc
	IsInteractive func() bool

	// Setup wires the services once global flags are parsed. Nil when the
	// services are already in place.
	Setup func(ctx context.Context, app *App) error

	// Keyring access for the db commands.
	SetDSN   func(dsn string) error
	ClearDSN func() error

	now func() time.Time
}

// NewRootCmd creates the top-level "plangate" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:           "plangate",
		Short:         "Daily plans and the time-registration gate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.applyOptions(cmd.Flags(), opts)
			if cmd.Annotations[skipSetup] == "true" || app.Setup == nil {
				return nil
			}
			if err := app.Setup(cmd.Context(), app); err != nil {
				return err
			}
			app.applyTheme()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.UserID, "user", "", "Act as this user ID")
	pf.BoolVar(&opts.Admin, "admin", false, "Act with administrator rights")
	pf.StringVar(&opts.Locale, "locale", "", "Message language (en, es)")
	pf.BoolVar(&opts.Debug, "debug", false, "Verbose logging to stderr")

	root.AddCommand(
		newPlanCmd(app),
		newHoursCmd(app),
		newUICmd(app),
		newWatchCmd(app),
		newDBCmd(app),
	)

	return root
}

// applyOptions lets explicitly set flags override configured values.
func (a *App) applyOptions(flags *pflag.FlagSet, opts Options) {
	if flags.Changed("user") {
		a.Actor.UserID = opts.UserID
	}
	if flags.Changed("admin") {
		a.Actor.Admin = opts.Admin
	}
	if flags.Changed("locale") || a.Translator == nil {
		a.Translator = locale.New(opts.Locale)
	}
	if flags.Changed("debug") {
		a.Debug = opts.Debug
	}
}

func (a *App) applyTheme() {
	if a.State == nil {
		return
	}
	switch a.State.Snapshot().Theme {
	case appstate.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	case appstate.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

func (a *App) today() time.Time {
	if a.now != nil {
		return domain.DateOf(a.now())
	}
	return domain.DateOf(time.Now())
}

// presenter picks the blocking presenter for this invocation.
func (a *App) presenter(cmd *cobra.Command) Presenter {
	if a.Presenter != nil {
		return a.Presenter
	}
	route := domain.CoalesceStr(a.PlanRoute, config.DefaultPlanRoute)
	interactive := a.IsInteractive
	if interactive == nil {
		interactive = stdinIsTerminal
	}
	if interactive() {
		return NewInteractivePresenter(a.Translator, route, a.Confirm)
	}
	return NewPlainPresenter(a.Translator, route, cmd.OutOrStdout())
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
