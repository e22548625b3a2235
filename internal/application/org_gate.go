package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/pkg/resterr"
)

// requireActiveOrg loads the caller's own organization and rejects the
// request unless that organization exists and its status is active. Every
// tenant-scoped admin operation runs through this before touching the
// target record.
func requireActiveOrg(ctx context.Context, orgs repository.OrganizationRepository, logger *logrus.Logger, callerOrgID string) *resterr.Error {
	org, err := orgs.FindByID(ctx, callerOrgID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.WithError(err).Error("organization gate: lookup failed")
		return resterr.Internal("ORGANIZATION_VALIDATION_ERROR", "Organization validation failed").WithField("system")
	}
	if err != nil || !org.Active() {
		logger.WithField("org_id", callerOrgID).Warn("organization gate: invalid or inactive organization")
		return resterr.BadRequest("INVALID_ORGANIZATION", "Invalid or inactive organization").
			WithField("org_id").
			WithData(map[string]any{"org_id": callerOrgID})
	}
	return nil
}
