// Package service coordinates the verification pipeline, the guidance
// assistant, and inventory reads on top of the record store.
package service

import (
	"go.uber.org/zap"

	"mediguard/internal/config"
	"mediguard/internal/flows"
	"mediguard/internal/metrics"
	"mediguard/internal/notify"
	"mediguard/internal/repository"
	"mediguard/policy"
)

type Service struct {
	store    repository.Store
	safety   *flows.SafetyScorer
	extract  *flows.DetailExtractor
	guidance *flows.GuidanceAssistant
	policy   *policy.Engine
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	config   *config.Config
	logger   *zap.Logger
}

func New(
	store repository.Store,
	safety *flows.SafetyScorer,
	extract *flows.DetailExtractor,
	guidance *flows.GuidanceAssistant,
	policyEngine *policy.Engine,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:    store,
		safety:   safety,
		extract:  extract,
		guidance: guidance,
		policy:   policyEngine,
		notifier: notifier,
		metrics:  m,
		config:   cfg,
		logger:   logger,
	}
}

// Notifications drains the user's pending asynchronous failure reports.
func (s *Service) Notifications(userID string) []notify.Notification {
	return s.notifier.Drain(userID)
}
