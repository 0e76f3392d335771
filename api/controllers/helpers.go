package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/api/middleware"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

// actorFromRequest resolves the authenticated user id placed on the
// context by the auth middleware.
func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id in context")
	}
	return id, nil
}

// branchFromRequest resolves the optional branch id from the token claims.
func branchFromRequest(r *http.Request) *uuid.UUID {
	raw := middleware.BranchIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// roleFromRequest resolves the caller's role from the token claims. An
// unknown or missing role comes back as the zero value, which grants
// nothing.
func roleFromRequest(r *http.Request) enums.UserRole {
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return ""
	}
	return role
}

// pathUUID parses a uuid route parameter.
func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}

// bearerToken pulls the raw access token off the Authorization header.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
