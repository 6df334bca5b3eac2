package repository

import (
	"context"
	"fmt"

	constant "github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/model"
	"gorm.io/gorm"
)

type FileRepository struct {
	*baseRepository
}

func (fr FileRepository) Create(ctx context.Context, tx *gorm.DB, file *model.File) (*model.File, error) {
	fr.logger.Debugf("Create file with data: %v \n", file)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.File{}).Create(file).Error; err != nil {
		return file, translateError("create file", err)
	}

	return file, nil
}

func (fr FileRepository) GetById(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error) {
	fr.logger.Debugf("Get file by id: %s", fileID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var file model.File
	if err := db.WithContext(ctx).Model(&model.File{}).Where(&model.File{
		BaseModel: model.BaseModel{
			ID: fileID,
		},
	}).First(&file).Error; err != nil {
		return nil, fmt.Errorf("file %s: %w", fileID, translateError("get file", err))
	}

	return &file, nil
}

// Delete removes the row and then the object. A dangling object is only logged.
func (fr FileRepository) Delete(ctx context.Context, tx *gorm.DB, file *model.File) error {
	fr.logger.Debugf("Delete file with fileID: %s \n", file.ID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Delete(&model.File{}, "id = ?", file.ID).Error; err != nil {
		return translateError("delete file", err)
	}
	if fr.s3 != nil {
		if err := file.Delete(ctx, fr.s3); err != nil {
			fr.logger.Warnf("Failed to remove object %s from bucket %s: %v", file.UniqueFileName, file.BucketName, err)
		}
	}

	return nil
}
