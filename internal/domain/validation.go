package domain

// ValidationResult is the gate's decision. It is never persisted.
// Reason is set whenever Allowed is false, and also when registration is only
// allowed because validation could not be performed.
type ValidationResult struct {
	Allowed bool
	Reason  string
	Code    ReasonCode
	PlanID  *string
}

// Degraded reports an allowance granted because the registry could not be read.
func (r ValidationResult) Degraded() bool {
	return r.Allowed && r.Code == ReasonValidationUnavailable
}
