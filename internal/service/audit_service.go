package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

const defaultAuditLimit = 50

type AuditService struct {
	auditRepo  AuditStore
	entityRepo EntityStore
	logger     *zap.Logger
}

func NewAuditService(auditRepo AuditStore, entityRepo EntityStore, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo:  auditRepo,
		entityRepo: entityRepo,
		logger:     logger,
	}
}

// Log appends an audit entry. Audit is best-effort: a failed write is
// logged and never fails the operation being audited.
func (s *AuditService) Log(ctx context.Context, userID, entityID uuid.UUID, action string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	entry := &models.AuditLog{
		ID:        uuid.New(),
		UserID:    userID,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

func (s *AuditService) List(ctx context.Context, userID, entityID uuid.UUID, query dto.AuditQuery) ([]models.AuditLog, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	filter := models.AuditFilter{EntityID: entityID, Limit: defaultAuditLimit}
	if query.Limit > 0 {
		filter.Limit = query.Limit
	}
	if query.From != "" {
		from, err := parseInstant(query.From)
		if err != nil {
			return nil, ErrInvalidFromDate
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := parseInstant(query.To)
		if err != nil {
			return nil, ErrInvalidToDate
		}
		filter.To = &to
	}

	return s.auditRepo.List(ctx, filter)
}
