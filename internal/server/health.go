package server

import (
	"context"

	"github.com/vanshika/creditshop/internal/processor"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// ProcessorHealthService verifies processor connectivity as part of health checks.
type ProcessorHealthService struct {
	Client processor.Client
}

// Probe implements the HealthService interface.
func (s ProcessorHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
