package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

const defaultEntityTimezone = "Asia/Tbilisi"

type EntityService struct {
	entityRepo EntityStore
	audit      *AuditService
	logger     *zap.Logger
}

func NewEntityService(entityRepo EntityStore, audit *AuditService, logger *zap.Logger) *EntityService {
	return &EntityService{
		entityRepo: entityRepo,
		audit:      audit,
		logger:     logger,
	}
}

func (s *EntityService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateEntityRequest) (*models.Entity, error) {
	status := models.TaxStatus(strings.ToUpper(strings.TrimSpace(req.TaxStatus)))
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || !status.Valid() {
		return nil, ErrInvalidRequest
	}

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = defaultEntityTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidRequest
	}

	now := time.Now().UTC()
	entity := &models.Entity{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: name,
		TaxStatus:   status,
		TaxID:       req.TaxID,
		Timezone:    timezone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entity.ID, "entity:create", map[string]any{"entityId": entity.ID.String()})
	return entity, nil
}

func (s *EntityService) List(ctx context.Context, userID uuid.UUID) ([]models.Entity, error) {
	return s.entityRepo.ListByUser(ctx, userID)
}

func (s *EntityService) Get(ctx context.Context, userID, entityID uuid.UUID) (*models.Entity, error) {
	return ownedEntity(ctx, s.entityRepo, userID, entityID)
}

// Update applies the non-nil fields of req.
func (s *EntityService) Update(ctx context.Context, userID, entityID uuid.UUID, req *dto.UpdateEntityRequest) (*models.Entity, error) {
	entity, err := ownedEntity(ctx, s.entityRepo, userID, entityID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, ErrInvalidRequest
		}
		entity.DisplayName = name
		changes["displayName"] = name
	}
	if req.TaxStatus != nil {
		status := models.TaxStatus(strings.ToUpper(strings.TrimSpace(*req.TaxStatus)))
		if !status.Valid() {
			return nil, ErrInvalidRequest
		}
		entity.TaxStatus = status
		changes["taxStatus"] = string(status)
	}
	if req.TaxID != nil {
		entity.TaxID = req.TaxID
		changes["taxId"] = *req.TaxID
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, ErrInvalidRequest
		}
		entity.Timezone = *req.Timezone
		changes["timezone"] = *req.Timezone
	}
	entity.UpdatedAt = time.Now().UTC()

	if err := s.entityRepo.Update(ctx, entity); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "entity:update", map[string]any{
		"entityId": entityID.String(),
		"changes":  changes,
	})
	return entity, nil
}
