package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
)

// parseDateFlag parses a YYYY-MM-DD flag value, defaulting to today.
func parseDateFlag(app *App, value string) (time.Time, error) {
	if value == "" {
		return app.today(), nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", value, err)
	}
	return d, nil
}

// ownerOr returns owner, or the acting user when owner is empty.
func ownerOr(app *App, owner string) string {
	return domain.CoalesceStr(owner, app.Actor.UserID)
}

// resolvePlan loads owner's plan for date together with its items.
func resolvePlan(ctx context.Context, app *App, owner, date string) (*domain.DailyPlan, error) {
	d, err := parseDateFlag(app, date)
	if err != nil {
		return nil, err
	}
	userID := ownerOr(app, owner)
	if userID == "" {
		return nil, fmt.Errorf("no user: pass --user or set user.id in the config")
	}
	plan, err := app.Plans.GetForDate(ctx, userID, d)
	if err != nil {
		return nil, fmt.Errorf("plan for %s on %s: %w", userID, domain.FormatDate(d), err)
	}
	return plan, nil
}

// resolveItemID resolves an item reference which can be:
//   - A 1-based position in the plan (requires --date context)
//   - An ID prefix unique within the plan (requires --date context)
//   - A full ID (passed through directly)
func resolveItemID(ctx context.Context, app *App, input, owner, date string) (string, error) {
	if date == "" {
		return input, nil
	}
	plan, err := resolvePlan(ctx, app, owner, date)
	if err != nil {
		return "", err
	}
	if pos, err := strconv.Atoi(input); err == nil && pos > 0 {
		if pos > len(plan.Items) {
			return "", fmt.Errorf("item #%d not found: plan has %d items", pos, len(plan.Items))
		}
		return plan.Items[pos-1].ID, nil
	}
	var match string
	for _, it := range plan.Items {
		if strings.HasPrefix(it.ID, input) {
			if match != "" {
				return "", fmt.Errorf("item reference %q is ambiguous", input)
			}
			match = it.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("item %q not found in plan for %s", input, domain.FormatDate(plan.PlanDate))
	}
	return match, nil
}
