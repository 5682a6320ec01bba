// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/uptowngym/internal/platform/middleware"
	requestutil "github.com/taibuivan/uptowngym/internal/platform/request"
	"github.com/taibuivan/uptowngym/internal/platform/respond"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/platform/validate"
	"github.com/taibuivan/uptowngym/pkg/pagination"
	"github.com/taibuivan/uptowngym/pkg/pointer"
)

// Handler implements the `/rest/v1/profiles` endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] for the profiles record set.
//
// # Endpoints
//   - GET   /            : ?id=eq.X or ?email=eq.X selects one row; no filter lists (admin).
//   - POST  /            : Inserts a row.
//   - PATCH /?id=eq.X    : Partial update.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.selectProfiles)
	router.Post("/", handler.insertProfile)
	router.Patch("/", handler.updateProfile)

	return router
}

type insertRequest struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	Role     sec.UserRole `json:"role"`
	IsAdmin  bool         `json:"is_admin"`
	IsStaff  bool         `json:"is_staff"`
}

/*
SelectProfiles reads one profile by filter, or lists all of them.

GET /rest/v1/profiles?id=eq.<uuid>
GET /rest/v1/profiles?email=eq.<email>
GET /rest/v1/profiles?limit=&offset=

Response:
  - 200: Profile for a filtered select; []Profile with Content-Range for a list
  - 403: List requested by a non-admin
  - 404: No visible row
*/
func (handler *Handler) selectProfiles(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if id, ok, err := requestutil.EqFilter(request, FieldID); err != nil || ok {
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		profile, err := handler.profileService.Get(request.Context(), claims, id)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, profile)
		return
	}

	if email, ok, err := requestutil.EqFilter(request, FieldEmail); err != nil || ok {
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		profile, err := handler.profileService.GetByEmail(request.Context(), claims, email)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, profile)
		return
	}

	params := pagination.FromRequest(request)
	profiles, total, err := handler.profileService.List(request.Context(), claims, params.Limit, params.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if profiles == nil {
		profiles = []*Profile{}
	}

	writer.Header().Set("Content-Range", params.ContentRange(len(profiles), total))
	writer.Header().Set("X-Total-Count", strconv.Itoa(total))
	respond.OK(writer, profiles)
}

/*
InsertProfile creates a profile row.

POST /rest/v1/profiles

Response:
  - 201: Profile
  - 403: Row for another account, or admin seeding without a confirmed allowlisted email
  - 409: Row already exists
*/
func (handler *Handler) insertProfile(writer http.ResponseWriter, request *http.Request) {
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

	validator := &validate.Validator{}
	validator.UUID(FieldID, input.ID).
		Email(FieldEmail, input.Email).
		MaxLen(FieldFullName, input.FullName, 120)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.Create(request.Context(), claims, CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, profile)
}

/*
UpdateProfile applies a partial update.

PATCH /rest/v1/profiles?id=eq.<uuid>

Response:
  - 200: Profile after the update
  - 403: Privileged column changed by a non-admin
  - 404: No visible row
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, ok, err := requestutil.EqFilter(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !ok {
		respond.Error(writer, request, validate.RequiredError(FieldID, "An id=eq.<uuid> filter is required"))
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}
	validator := &validate.Validator{}
	validator.MaxLen(FieldFullName, pointer.Val(patch.FullName), 120)
	if patch.Role != nil {
		validator.OneOf(FieldRole, string(*patch.Role), string(sec.RoleAdmin), string(sec.RoleTrainer), string(sec.RoleStaff), string(sec.RoleMember))
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.Update(request.Context(), claims, id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
