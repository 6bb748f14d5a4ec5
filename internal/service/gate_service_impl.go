package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/alexanderramin/plangate/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ValidationUnavailableReason is the fail-open reason. It is the same in every
// locale so callers and logs can match on it.
const ValidationUnavailableReason = "validation temporarily unavailable"

// maxRangeDays bounds CheckRange.
const maxRangeDays = 366

// GateOptions configures the validation gate.
type GateOptions struct {
	Translator  *locale.Translator
	Logger      *slog.Logger
	Parallelism int
}

type gateService struct {
	finder      PlanFinder
	tr          *locale.Translator
	log         *slog.Logger
	parallelism int
	observer    UseCaseObserver
}

func NewGateService(finder PlanFinder, opts GateOptions, observers ...UseCaseObserver) GateService {
	g := &gateService{
		finder:      finder,
		tr:          opts.Translator,
		log:         opts.Logger,
		parallelism: opts.Parallelism,
		observer:    useCaseObserverOrNoop(observers),
	}
	if g.tr == nil {
		g.tr = locale.New("")
	}
	if g.log == nil {
		g.log = logger.Slog()
	}
	if g.parallelism < 1 {
		g.parallelism = 4
	}
	return g
}

func (g *gateService) CheckCanRegisterHours(ctx context.Context, userID string, targetDate time.Time, isAdmin bool) (result domain.ValidationResult) {
	date := domain.DateOf(targetDate)
	startedAt := time.Now()
	defer func() {
		g.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "check-can-register-hours",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   true,
			Fields: map[string]any{
				"user_id": userID,
				"date":    domain.FormatDate(date),
				"admin":   isAdmin,
				"allowed": result.Allowed,
				"code":    string(result.Code),
			},
		})
	}()

	// Without a user there is nobody to attribute a plan to.
	if userID == "" {
		return domain.ValidationResult{
			Allowed: false,
			Reason:  g.tr.Sprintf(locale.MsgNoUser),
			Code:    domain.ReasonNoUser,
		}
	}

	if isAdmin {
		return domain.ValidationResult{Allowed: true, Code: domain.ReasonAdminBypass}
	}

	plan, err := g.finder.FindForDate(ctx, userID, date)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.ValidationResult{
			Allowed: false,
			Reason:  g.tr.Sprintf(locale.MsgNoPlan, domain.FormatDate(date)),
			Code:    domain.ReasonNoPlan,
		}
	case err != nil:
		// Fail open: an unreachable registry must not stop anyone logging time.
		g.log.WarnContext(ctx, "plan validation unavailable, allowing registration",
			"user_id", userID,
			"date", domain.FormatDate(date),
			"err", err,
		)
		return domain.ValidationResult{
			Allowed: true,
			Reason:  ValidationUnavailableReason,
			Code:    domain.ReasonValidationUnavailable,
		}
	case plan == nil:
		return domain.ValidationResult{
			Allowed: false,
			Reason:  g.tr.Sprintf(locale.MsgNoPlan, domain.FormatDate(date)),
			Code:    domain.ReasonNoPlan,
		}
	case !plan.Qualifies():
		return domain.ValidationResult{
			Allowed: false,
			Reason:  g.tr.Sprintf(locale.MsgPlanNotSubmitted, domain.FormatDate(date), string(plan.Status)),
			Code:    domain.ReasonPlanNotSubmitted,
		}
	}

	planID := plan.ID
	return domain.ValidationResult{Allowed: true, Code: domain.ReasonPlanQualifies, PlanID: &planID}
}

func (g *gateService) CheckRange(ctx context.Context, userID string, from, to time.Time, isAdmin bool) ([]DayDecision, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("checking range: end %s is before start %s", domain.FormatDate(to), domain.FormatDate(from))
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxRangeDays {
		return nil, fmt.Errorf("checking range: %d days exceeds the %d day limit", days, maxRangeDays)
	}

	decisions := make([]DayDecision, days)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i)
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			decisions[i] = DayDecision{Date: day, Result: g.CheckCanRegisterHours(egCtx, userID, day, isAdmin)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("checking range: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("checking range: %w", err)
	}
	return decisions, nil
}
