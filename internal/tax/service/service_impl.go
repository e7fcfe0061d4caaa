package service

import (
	"strings"

	"github.com/smallbiznis/orderdesk/internal/config"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	taxdomain "github.com/smallbiznis/orderdesk/internal/tax/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.OrderConfigHolder
}

type Service struct {
	cfg *config.OrderConfigHolder
}

func NewService(p Params) taxdomain.Service {
	return &Service{cfg: p.Config}
}

func (s *Service) Jurisdiction(role sessiondomain.Role, profileState, customerState string) taxdomain.Jurisdiction {
	home, known := IsHomeJurisdiction(s.cfg.Get().HomeNames(), role, profileState, customerState)
	return taxdomain.Jurisdiction{Home: home, Known: known}
}

func (s *Service) IsHome(state string) bool {
	return matchesHome(s.cfg.Get().HomeNames(), state)
}

func (s *Service) ComputeLine(line taxdomain.Line, j taxdomain.Jurisdiction) taxdomain.Line {
	return ComputeLine(line, j)
}

func (s *Service) Compute(lines []taxdomain.Line, j taxdomain.Jurisdiction) ([]taxdomain.Line, taxdomain.Totals) {
	out := make([]taxdomain.Line, len(lines))
	for i, line := range lines {
		out[i] = ComputeLine(line, j)
	}
	return out, Sum(out)
}

// IsHomeJurisdiction applies the jurisdiction rule against homeNames.
// known is false when no state is available to decide with.
func IsHomeJurisdiction(homeNames []string, role sessiondomain.Role, profileState, customerState string) (home, known bool) {
	state := customerState
	if role == sessiondomain.RoleDistributor {
		state = profileState
	}
	if strings.TrimSpace(state) == "" {
		return false, false
	}
	return matchesHome(homeNames, state), true
}

func matchesHome(homeNames []string, state string) bool {
	state = strings.TrimSpace(state)
	if state == "" {
		return false
	}
	for _, name := range homeNames {
		if strings.EqualFold(state, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
