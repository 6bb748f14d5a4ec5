package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/plangate/internal/cli/formatter"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/charmbracelet/huh"
)

// Choice is the user's answer to a blocked registration.
type Choice int

const (
	ChoiceCancel Choice = iota
	ChoiceCreatePlan
)

func (c Choice) String() string {
	if c == ChoiceCreatePlan {
		return "create-plan"
	}
	return "cancel"
}

// PresentInput describes one blocked registration.
type PresentInput struct {
	Open   bool
	Date   time.Time
	Reason string
}

// Presentation is the outcome of showing the block to the user. Route is only
// set for ChoiceCreatePlan. Asked is false when nobody could answer, so the
// cancel is the presenter's and not the user's.
type Presentation struct {
	Choice Choice
	Route  string
	Asked  bool
}

// Presenter shows a gate denial and lets the user choose what to do next.
// It holds no state between calls.
type Presenter interface {
	Present(ctx context.Context, in PresentInput) Presentation
}

// ConfirmFunc asks a yes/no question. It is swapped out in tests.
type ConfirmFunc func(ctx context.Context, title, description, affirmative, negative string) (bool, error)

// PlanRoute expands the plan-authoring route template for date.
func PlanRoute(template string, date time.Time) string {
	return strings.ReplaceAll(template, "{date}", domain.FormatDate(date))
}

type interactivePresenter struct {
	tr      *locale.Translator
	route   string
	confirm ConfirmFunc
}

// NewInteractivePresenter prompts with a confirm dialog. A nil confirm uses huh.
func NewInteractivePresenter(tr *locale.Translator, routeTemplate string, confirm ConfirmFunc) Presenter {
	if confirm == nil {
		confirm = huhConfirm
	}
	return &interactivePresenter{tr: tr, route: routeTemplate, confirm: confirm}
}

func (p *interactivePresenter) Present(ctx context.Context, in PresentInput) Presentation {
	if !in.Open {
		return Presentation{Choice: ChoiceCancel}
	}
	ok, err := p.confirm(ctx,
		p.tr.Sprintf(locale.MsgPromptTitle),
		in.Reason,
		p.tr.Sprintf(locale.MsgPromptCreate),
		p.tr.Sprintf(locale.MsgPromptCancel),
	)
	if err != nil {
		// An aborted prompt is a cancel, not a failure.
		if !errors.Is(err, huh.ErrUserAborted) {
			logger.Warn("plan prompt failed", "err", err)
			return Presentation{Choice: ChoiceCancel}
		}
		return Presentation{Choice: ChoiceCancel, Asked: true}
	}
	if !ok {
		return Presentation{Choice: ChoiceCancel, Asked: true}
	}
	return Presentation{Choice: ChoiceCreatePlan, Route: PlanRoute(p.route, in.Date), Asked: true}
}

func huhConfirm(ctx context.Context, title, description, affirmative, negative string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative(negative).
				Value(&ok),
		),
	).WithTheme(plangateHuhTheme()).WithShowHelp(false)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return ok, nil
}

type plainPresenter struct {
	tr    *locale.Translator
	route string
	out   io.Writer
}

// NewPlainPresenter prints the reason and the authoring route and always
// cancels. It is used when stdin is not a terminal.
func NewPlainPresenter(tr *locale.Translator, routeTemplate string, out io.Writer) Presenter {
	return &plainPresenter{tr: tr, route: routeTemplate, out: out}
}

func (p *plainPresenter) Present(_ context.Context, in PresentInput) Presentation {
	if !in.Open {
		return Presentation{Choice: ChoiceCancel}
	}
	fmt.Fprintln(p.out, formatter.StyleRed.Render(p.tr.Sprintf(locale.MsgPromptTitle)))
	fmt.Fprintln(p.out, in.Reason)
	fmt.Fprintln(p.out, p.tr.Sprintf(locale.MsgPromptRoute, PlanRoute(p.route, in.Date)))
	return Presentation{Choice: ChoiceCancel}
}
