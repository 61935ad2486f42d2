package service

import (
	"github.com/google/uuid"

	"github.com/pageza/recipe-share/backend/internal/model"
)

// RequireAdmin fails with ErrForbidden unless the identity is an admin.
func RequireAdmin(id model.Identity) error {
	if !id.IsAdmin() {
		return errAdminOnly
	}
	return nil
}

// RequireOwnerOrAdmin fails with ErrForbidden unless the identity owns the
// resource or is an admin.
func RequireOwnerOrAdmin(id model.Identity, ownerID uuid.UUID) error {
	if id.ID == ownerID || id.IsAdmin() {
		return nil
	}
	return errAccessDenied
}
