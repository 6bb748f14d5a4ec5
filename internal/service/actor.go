package service

// Actor is the authenticated caller. Identity and role are resolved outside
// the application and passed in.
type Actor struct {
	UserID string
	Admin  bool
}

// CanActFor reports whether the actor may act on userID's records.
func (a Actor) CanActFor(userID string) bool {
	return a.Admin || (a.UserID != "" && a.UserID == userID)
}
