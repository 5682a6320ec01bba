// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/uptowngym/internal/platform/middleware"
	requestutil "github.com/taibuivan/uptowngym/internal/platform/request"
	"github.com/taibuivan/uptowngym/internal/platform/respond"
)

// Handler implements the `/rest/v1/audit_logs` endpoint.
type Handler struct {
	auditService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{auditService: service}
}

// Routes returns a [chi.Router] for the audit log record set.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Post("/", handler.insert)
	return router
}

type insertRequest struct {
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Metadata   json.RawMessage `json:"metadata"`
}

/*
Insert appends an audit entry for the caller. Any actor_id in the body is ignored.

POST /rest/v1/audit_logs

Response:
  - 201: Entry
  - 400: Validation failure
*/
func (handler *Handler) insert(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input insertRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.auditService.Record(request.Context(), claims, RecordInput{
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Metadata:   input.Metadata,
		IPAddress:  middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}
