package domain

import sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"

type Service interface {
	// Jurisdiction picks the state that decides the split: a distributor's
	// own registered state, otherwise the explicitly selected customer's.
	Jurisdiction(role sessiondomain.Role, profileState, customerState string) Jurisdiction
	IsHome(state string) bool
	ComputeLine(line Line, j Jurisdiction) Line
	Compute(lines []Line, j Jurisdiction) ([]Line, Totals)
}
