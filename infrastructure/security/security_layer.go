package security

import (
	"context"
	"fmt"
	"strings"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var destructiveKeywords = []string{
	"delete", "remove", "cancel subscription", "terminate",
	"suspend", "refund", "purge", "reset",
}

var submitKeywords = []string{
	"submit", "save", "confirm", "send", "create",
}

// SecurityLayer keeps scenarios from changing live portal data unless the
// run opted in to destructive actions
type SecurityLayer struct {
	logger           logrus.FieldLogger
	allowDestructive bool
}

func NewSecurityLayer(logger logrus.FieldLogger, allowDestructive bool) *SecurityLayer {
	return &SecurityLayer{
		logger:           logger,
		allowDestructive: allowDestructive,
	}
}

// IsDestructiveAction checks the target flag first, then its name and selectors
func (s *SecurityLayer) IsDestructiveAction(ctx context.Context, action entities.Action) bool {
	if action.Target.Destructive {
		return true
	}
	if action.Type != entities.ActionClick {
		return false
	}
	return containsAny(describe(action.Target), destructiveKeywords)
}

func (s *SecurityLayer) GetActionRiskLevel(ctx context.Context, action entities.Action) interfaces.RiskLevel {
	if s.IsDestructiveAction(ctx, action) {
		return interfaces.RiskHigh
	}

	switch action.Type {
	case entities.ActionNavigate, entities.ActionPress:
		return interfaces.RiskLow
	case entities.ActionClick:
		if containsAny(describe(action.Target), submitKeywords) {
			return interfaces.RiskMedium
		}
		return interfaces.RiskLow
	case entities.ActionFill, entities.ActionUpload:
		// Typing could be medium risk if it ends up in a submitted form
		return interfaces.RiskMedium
	}
	return interfaces.RiskLow
}

// Allow blocks destructive actions unless they were enabled for the run
func (s *SecurityLayer) Allow(ctx context.Context, action entities.Action) error {
	risk := s.GetActionRiskLevel(ctx, action)
	if risk != interfaces.RiskHigh {
		return nil
	}

	fields := logrus.Fields{
		"action": action.Type,
		"target": action.Target.Name,
		"risk":   risk,
	}
	if s.allowDestructive {
		s.logger.WithFields(fields).Warn("Destructive action allowed by configuration")
		return nil
	}

	s.logger.WithFields(fields).Warn("Destructive action blocked")
	return fmt.Errorf("%w: %s on %q is destructive, set ALLOW_DESTRUCTIVE=true to run it",
		entities.ErrBlocked, action.Type, action.Target.Name)
}

func describe(t entities.Target) string {
	return strings.ToLower(t.Name + " " + strings.Join(t.Selectors(), " "))
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

var _ interfaces.ActionGuard = (*SecurityLayer)(nil)
