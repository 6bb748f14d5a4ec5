package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/testutil"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
)

func TestPlanRoute(t *testing.T) {
	assert.Equal(t, "/daily-plans/new?date=2024-03-01", PlanRoute("/daily-plans/new?date={date}", testutil.Date("2024-03-01")))
	assert.Equal(t, "/plans", PlanRoute("/plans", testutil.Date("2024-03-01")))
}

func TestPresenters_ClosedDoesNothing(t *testing.T) {
	called := false
	confirm := func(context.Context, string, string, string, string) (bool, error) {
		called = true
		return true, nil
	}
	var out bytes.Buffer
	tr := locale.New("en")

	in := PresentInput{Open: false, Date: testutil.Date("2024-03-01"), Reason: "no plan"}
	assert.Equal(t, Presentation{Choice: ChoiceCancel}, NewInteractivePresenter(tr, "/p?d={date}", confirm).Present(context.Background(), in))
	assert.Equal(t, Presentation{Choice: ChoiceCancel}, NewPlainPresenter(tr, "/p?d={date}", &out).Present(context.Background(), in))

	assert.False(t, called)
	assert.Empty(t, out.String())
}

func TestInteractivePresenter_Choices(t *testing.T) {
	tr := locale.New("es")
	in := PresentInput{Open: true, Date: testutil.Date("2024-03-01"), Reason: "sin plan"}

	tests := []struct {
		name   string
		answer bool
		err    error
		want   Presentation
	}{
		{"create", true, nil, Presentation{Choice: ChoiceCreatePlan, Route: "/p?d=2024-03-01", Asked: true}},
		{"cancel", false, nil, Presentation{Choice: ChoiceCancel, Asked: true}},
		{"aborted", false, huh.ErrUserAborted, Presentation{Choice: ChoiceCancel, Asked: true}},
		{"broken terminal", false, errors.New("tty gone"), Presentation{Choice: ChoiceCancel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTitle, gotDesc, gotYes, gotNo string
			confirm := func(_ context.Context, title, desc, yes, no string) (bool, error) {
				gotTitle, gotDesc, gotYes, gotNo = title, desc, yes, no
				return tt.answer, tt.err
			}

			got := NewInteractivePresenter(tr, "/p?d={date}", confirm).Present(context.Background(), in)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Se requiere un plan diario", gotTitle)
			assert.Equal(t, "sin plan", gotDesc)
			assert.Equal(t, "Crear plan", gotYes)
			assert.Equal(t, "Cancelar", gotNo)
		})
	}
}

func TestPlainPresenter_PrintsReasonAndRoute(t *testing.T) {
	var out bytes.Buffer
	p := NewPlainPresenter(locale.New("en"), "/daily-plans/new?date={date}", &out)

	got := p.Present(context.Background(), PresentInput{
		Open:   true,
		Date:   testutil.Date("2024-03-01"),
		Reason: "You have no daily plan for 2024-03-01.",
	})

	assert.Equal(t, ChoiceCancel, got.Choice)
	assert.Contains(t, out.String(), "Daily plan required")
	assert.Contains(t, out.String(), "You have no daily plan for 2024-03-01.")
	assert.Contains(t, out.String(), "Plan authoring: /daily-plans/new?date=2024-03-01")
}

func TestChoiceString(t *testing.T) {
	assert.Equal(t, "cancel", ChoiceCancel.String())
	assert.Equal(t, "create-plan", ChoiceCreatePlan.String())
}
