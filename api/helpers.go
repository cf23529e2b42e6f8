package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, steward.ErrSystemRoleImmutable) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrSelfReporting) || errors.Is(err, steward.ErrCyclicReporting) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrRoleHasReports) || errors.Is(err, steward.ErrDepartmentHasChildren) || errors.Is(err, steward.ErrDepartmentInUse) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrDepartmentCycle) || errors.Is(err, steward.ErrGraphDepthExceeded) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, steward.ErrRoleNotFound) ||
		errors.Is(err, steward.ErrDepartmentNotFound) ||
		errors.Is(err, steward.ErrCheckLogNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
