package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/smartinventory/inventory-backend/api/middleware"
)

// actorID resolves the authenticated user's id from the request context.
// Routes behind the auth middleware always carry one; uuid.Nil otherwise.
func actorID(r *http.Request) uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
