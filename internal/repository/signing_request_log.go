package repository

import (
	"context"

	constant "github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/model"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"gorm.io/gorm"
)

type SigningRequestLogRepository struct {
	*baseRepository
}

var _ esign.AuditSink = (*SigningRequestLogRepository)(nil)

// AuditRole tells who performed an audit action.
func AuditRole(action esign.AuditAction) constant.AuditRole {
	switch action {
	case esign.AuditOpened, esign.AuditSigned, esign.AuditDeclined:
		return constant.AuditRoleSigner
	case esign.AuditCompleted, esign.AuditExpired, esign.AuditReminded:
		return constant.AuditRoleSystem
	default:
		return constant.AuditRoleOwner
	}
}

func (srlr SigningRequestLogRepository) Create(ctx context.Context, tx *gorm.DB, log *model.SigningRequestLog) (*model.SigningRequestLog, error) {
	srlr.logger.Debugf("Create signing request log with data: %v", log)

	db := srlr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.SigningRequestLog{}).Omit("SigningRequest").Create(log).Error; err != nil {
		return log, translateError("create signing request log", err)
	}

	return log, nil
}

func (srlr SigningRequestLogRepository) Record(ctx context.Context, event esign.AuditEvent) error {
	_, err := srlr.Create(ctx, nil, &model.SigningRequestLog{
		Role:             string(AuditRole(event.Action)),
		Action:           string(event.Action),
		Actor:            event.Actor,
		Description:      event.Description,
		Timestamp:        event.Timestamp,
		SigningRequestID: event.SigningRequestID,
	})
	return err
}

func (srlr SigningRequestLogRepository) ListBySigningRequestID(ctx context.Context, tx *gorm.DB, signingRequestID string) ([]*model.SigningRequestLog, error) {
	srlr.logger.Debugf("Get signing request logs by signing request id: %s", signingRequestID)

	db := srlr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []*model.SigningRequestLog
	if err := db.WithContext(ctx).Model(&model.SigningRequestLog{}).Where(model.SigningRequestLog{
		SigningRequestID: signingRequestID,
	}).Order("timestamp asc").Find(&logs).Error; err != nil {
		return logs, translateError("list signing request logs", err)
	}

	return logs, nil
}
