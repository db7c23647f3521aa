// Package guard is the pure authorization check in front of every
// screen: it maps a session snapshot and a required-role set onto a
// render decision, keeping role logic out of the view layer.
package guard

import (
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/session"
)

// Decision is the outcome of a capability evaluation.
type Decision int

const (
	// DecisionPending means the session is still loading; render a
	// placeholder and issue no redirect.
	DecisionPending Decision = iota
	// DecisionRedirectToLogin means no authenticated session exists.
	DecisionRedirectToLogin
	// DecisionRedirectToFallback means the user's role is not permitted;
	// send them to the default landing route.
	DecisionRedirectToFallback
	// DecisionAllow grants access.
	DecisionAllow
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionRedirectToLogin:
		return "redirect-to-login"
	case DecisionRedirectToFallback:
		return "redirect-to-fallback"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate decides whether the session may access a screen requiring
// one of the given roles. Pure: callers must re-evaluate on every
// session change rather than cache the result.
func Evaluate(s session.Session, requiredRoles []model.Role) Decision {
	if s.IsLoading {
		return DecisionPending
	}

	if !s.IsAuthenticated {
		return DecisionRedirectToLogin
	}

	if s.User == nil || !roleIn(s.User.Role, requiredRoles) {
		return DecisionRedirectToFallback
	}

	return DecisionAllow
}

func roleIn(role model.Role, roles []model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
