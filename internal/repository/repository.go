package repository

import (
	"context"
	"errors"

	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	s3     *minio.Client
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB                *gorm.DB
	SigningRequest    *SigningRequestRepository
	SigningRequestLog *SigningRequestLogRepository
	File              *FileRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *baseRepository {
	return &baseRepository{db: db, logger: logger, s3: s3}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *Repository {
	br := newBaseRepository(db, logger, s3)

	return &Repository{
		DB:                db,
		SigningRequest:    &SigningRequestRepository{baseRepository: br},
		SigningRequestLog: &SigningRequestLogRepository{baseRepository: br},
		File:              &FileRepository{baseRepository: br},
	}
}

// Note: GORM perform write (create/update/delete) operations run inside a transaction to ensure data consistency | So this function is helpful only if we disable auto transaction
// Docs: https://gorm.io/docs/transactions.html#Disable-Default-Transaction
func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Debugf("withTx Transaction error: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}

// translateError maps gorm and driver errors onto the signing core's error kinds.
// The connection is opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(esign.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(esign.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return esign.NewValidationError(op, "%v", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return esign.NewTransientError(op, err)
	}

	var ve *esign.ValidationError
	if errors.Is(err, esign.ErrValidation) || errors.As(err, &ve) {
		return err
	}
	return esign.NewTransientError(op, err)
}
