package model

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

type File struct {
	BaseModel
	OwnerUserID    string `gorm:"type:text;not null;index" json:"ownerUserId"`
	FileName       string `gorm:"type:text;not null" json:"fileName"`
	UniqueFileName string `gorm:"type:text;not null;uniqueIndex" json:"uniqueFileName"`
	BucketName     string `gorm:"type:text;not null" json:"bucketName"`
	ContentType    string `gorm:"type:text;not null" json:"contentType"`
	Size           int64  `gorm:"type:bigint;not null" json:"size"`
	PageCount      int    `gorm:"type:integer;not null;default:0" json:"pageCount"`
}

func (f File) TableName() string {
	return "files"
}

func (f File) Delete(ctx context.Context, s3 *minio.Client) error {
	if f.BucketName == "" || f.UniqueFileName == "" {
		return errors.New("bucket name and unique file name cannot be empty")
	}

	return s3.RemoveObject(ctx, f.BucketName, f.UniqueFileName, minio.RemoveObjectOptions{})
}

func (f File) ToBaseFilename() string {
	return filepath.Base(f.FileName)
}
