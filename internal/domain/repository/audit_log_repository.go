package repository

import (
	"context"

	"clinic-appointment-system/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *entity.AuditLog) error
}
