package appcontext

import (
	"context"
	"time"

	"github.com/SeakMengs/SignFlow/internal/auth"
	"github.com/SeakMengs/SignFlow/internal/config"
	filestorage "github.com/SeakMengs/SignFlow/internal/file_storage"
	"github.com/SeakMengs/SignFlow/internal/model"
	"github.com/SeakMengs/SignFlow/internal/repository"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentStorage stores source PDFs and hands out read links.
type DocumentStorage interface {
	Bucket() string
	Put(ctx context.Context, ownerUserID, fileName string, data []byte) (*filestorage.Document, error)
	PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error)
}

// FileRecorder keeps the metadata row of an uploaded document.
type FileRecorder interface {
	Create(ctx context.Context, tx *gorm.DB, file *model.File) (*model.File, error)
	GetById(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error)
	Delete(ctx context.Context, tx *gorm.DB, file *model.File) error
}

type AuditTrail interface {
	ListBySigningRequestID(ctx context.Context, tx *gorm.DB, signingRequestID string) ([]*model.SigningRequestLog, error)
}

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Service runs the signing workflow.
	Service *esign.Service

	Documents DocumentStorage

	Files FileRecorder

	AuditTrail AuditTrail

	// JWTService verifies the access tokens of request owners.
	JWTService auth.JWTInterface
}
