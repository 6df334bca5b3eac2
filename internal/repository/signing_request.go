package repository

import (
	"context"
	"errors"
	"fmt"

	constant "github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/model"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SigningRequestRepository is the postgres backed esign.Store.
type SigningRequestRepository struct {
	*baseRepository
}

var _ esign.Store = (*SigningRequestRepository)(nil)

func preloadAggregate(db *gorm.DB) *gorm.DB {
	return db.Preload("Signers", func(db *gorm.DB) *gorm.DB {
		return db.Order("signer_order asc")
	}).Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("signer_order asc, id asc")
	})
}

func (srr SigningRequestRepository) Create(ctx context.Context, r *esign.SigningRequest) (string, error) {
	srr.logger.Debugf("Create signing request %s with %d signer(s)", r.ID, len(r.Signers))

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	row := model.SigningRequestFromDomain(r)
	row.Version = 1
	err := srr.withTx(srr.db.WithContext(ctx), func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", translateError("create signing request", err)
	}

	return row.ID, nil
}

func (srr SigningRequestRepository) Get(ctx context.Context, id string) (*esign.SigningRequest, error) {
	srr.logger.Debugf("Get signing request by id: %s", id)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var row model.SigningRequest
	if err := preloadAggregate(srr.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, fmt.Errorf("signing request %s: %w", id, translateError("get signing request", err))
	}

	return row.ToDomain(), nil
}

func (srr SigningRequestRepository) FindByToken(ctx context.Context, token string) (*esign.SigningRequest, *esign.Signer, error) {
	srr.logger.Debug("Find signing request by signer token")

	if token == "" {
		return nil, nil, esign.ErrInvalidLink
	}

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var signer model.Signer
	if err := srr.db.WithContext(ctx).Model(&model.Signer{}).Where("token = ?", token).First(&signer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, esign.ErrInvalidLink
		}
		return nil, nil, translateError("find signer by token", err)
	}

	var row model.SigningRequest
	if err := preloadAggregate(srr.db.WithContext(ctx)).Where("id = ?", signer.SigningRequestID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, esign.ErrInvalidLink
		}
		return nil, nil, translateError("find signing request by token", err)
	}

	r := row.ToDomain()
	idx := r.SignerByToken(token)
	if idx < 0 {
		return nil, nil, esign.ErrInvalidLink
	}
	s := r.Signers[idx]
	return r, &s, nil
}

// Update locks the request row, applies fn to the committed aggregate and
// rewrites it in the same transaction. Signers and fields are replaced as a
// set since a draft edit may reshape both.
func (srr SigningRequestRepository) Update(ctx context.Context, id string, fn func(*esign.SigningRequest) error) (*esign.SigningRequest, error) {
	srr.logger.Debugf("Update signing request: %s", id)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var next *esign.SigningRequest
	var fnErr error
	err := srr.withTx(srr.db.WithContext(ctx), func(tx *gorm.DB) error {
		var current model.SigningRequest
		if err := preloadAggregate(tx.Clauses(clause.Locking{Strength: "UPDATE"})).Where("id = ?", id).First(&current).Error; err != nil {
			return err
		}

		next = current.ToDomain()
		if err := fn(next); err != nil {
			fnErr = err
			return err
		}
		if next.ID != current.ID {
			fnErr = esign.NewValidationError("id", "signing request id is immutable")
			return fnErr
		}
		next.Version = current.Version + 1

		row := model.SigningRequestFromDomain(next)
		res := tx.Model(&model.SigningRequest{}).
			Where("id = ? AND version = ?", id, current.Version).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return esign.ErrConflict
		}

		if err := tx.Where("signing_request_id = ?", id).Delete(&model.SigningField{}).Error; err != nil {
			return err
		}
		if err := tx.Where("signing_request_id = ?", id).Delete(&model.Signer{}).Error; err != nil {
			return err
		}
		if len(row.Signers) > 0 {
			if err := tx.Create(&row.Signers).Error; err != nil {
				return err
			}
		}
		if len(row.Fields) > 0 {
			if err := tx.Create(&row.Fields).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		if errors.Is(err, esign.ErrConflict) {
			return nil, fmt.Errorf("signing request %s changed concurrently: %w", id, esign.ErrConflict)
		}
		return nil, fmt.Errorf("signing request %s: %w", id, translateError("update signing request", err))
	}

	return next, nil
}

func (srr SigningRequestRepository) ListByOwner(ctx context.Context, userID string) ([]esign.SigningRequest, error) {
	srr.logger.Debugf("List signing requests owned by: %s", userID)

	return srr.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_user_id = ?", userID)
	})
}

func (srr SigningRequestRepository) ListByRecipientEmail(ctx context.Context, email string) ([]esign.SigningRequest, error) {
	email = esign.NormalizeEmail(email)
	srr.logger.Debugf("List signing requests addressed to: %s", email)

	return srr.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&model.Signer{}).
			Select("signing_request_id").
			Where("email = ?", email))
	})
}

func (srr SigningRequestRepository) ListActive(ctx context.Context) ([]esign.SigningRequest, error) {
	srr.logger.Debug("List active signing requests")

	return srr.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("status IN ?", []string{string(esign.RequestStatusPending), string(esign.RequestStatusInProgress)})
	})
}

func (srr SigningRequestRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]esign.SigningRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var rows []model.SigningRequest
	if err := preloadAggregate(srr.db.WithContext(ctx)).Scopes(scope).Order("created_at desc, id asc").Find(&rows).Error; err != nil {
		return nil, translateError("list signing requests", err)
	}

	out := make([]esign.SigningRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.ToDomain())
	}
	return out, nil
}
