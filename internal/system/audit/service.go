// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/platform/validate"
	"github.com/taibuivan/uptowngym/pkg/uuid"
)

// Service records audit entries.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: func() time.Time { return time.Now().UTC() }}
}

// RecordInput is the client-supplied part of an entry.
type RecordInput struct {
	Action     string
	EntityType string
	EntityID   string
	Metadata   json.RawMessage
	IPAddress  string
}

/*
Record validates and appends an entry attributed to the caller.

Returns:
  - *Entry: Stored entry
  - error: Validation or storage failures
*/
func (service *Service) Record(context context.Context, caller *sec.AuthClaims, input RecordInput) (*Entry, error) {
	validator := &validate.Validator{}
	validator.Required(FieldAction, input.Action).
		MaxLen(FieldAction, input.Action, 64).
		Required(FieldEntityType, input.EntityType).
		MaxLen(FieldEntityType, input.EntityType, 64).
		Custom(FieldMetadata, len(input.Metadata) > 0 && !json.Valid(input.Metadata), "Must be valid JSON").
		Custom(FieldMetadata, len(input.Metadata) > 8<<10, "Must be at most 8 KiB")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:         uuid.New(),
		ActorID:    caller.UserID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Metadata:   input.Metadata,
		IPAddress:  input.IPAddress,
		CreatedAt:  service.now(),
	}

	if err := service.repository.Insert(context, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
