package interfaces

import (
	"context"

	"portal_automation/domain/entities"
)

// RiskLevel grades how much damage an action can do to portal data
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ActionGuard decides whether an action may run against a live portal
type ActionGuard interface {
	// IsDestructiveAction checks if an action changes data irreversibly
	IsDestructiveAction(ctx context.Context, action entities.Action) bool

	// GetActionRiskLevel returns the risk level of an action
	GetActionRiskLevel(ctx context.Context, action entities.Action) RiskLevel

	// Allow returns entities.ErrBlocked when the action must not run
	Allow(ctx context.Context, action entities.Action) error
}
