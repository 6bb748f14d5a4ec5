package domain

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanSubmitted PlanStatus = "submitted"
	PlanApproved  PlanStatus = "approved"
	PlanRejected  PlanStatus = "rejected"
)

// ValidPlanStatuses is the canonical set of accepted plan status strings.
var ValidPlanStatuses = map[PlanStatus]bool{
	PlanDraft: true, PlanSubmitted: true, PlanApproved: true, PlanRejected: true,
}

type Priority string

const (
	PriorityUrgent Priority = "urgente"
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baja"
)

// ValidPriorities is the canonical set of accepted item priority strings.
var ValidPriorities = map[Priority]bool{
	PriorityUrgent: true, PriorityHigh: true, PriorityMedium: true, PriorityLow: true,
}

// Rank orders priorities from most to least pressing. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ReasonCode classifies why the gate reached its decision.
type ReasonCode string

const (
	ReasonNone                  ReasonCode = ""
	ReasonAdminBypass           ReasonCode = "admin_bypass"
	ReasonPlanQualifies         ReasonCode = "plan_qualifies"
	ReasonNoPlan                ReasonCode = "no_plan"
	ReasonPlanNotSubmitted      ReasonCode = "plan_not_submitted"
	ReasonNoUser                ReasonCode = "no_user"
	ReasonValidationUnavailable ReasonCode = "validation_unavailable"
)
