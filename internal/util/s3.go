package util

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

func GetOwnerDocumentDirectoryPath(ownerUserID string) string {
	return fmt.Sprintf("documents/%s", ownerUserID)
}

func CreateBucketIfNotExists(ctx context.Context, s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Add a prefix to the file name
	// For example, if the file name is "nda.pdf" and the prefix is "documents/123",
	// the resulting name will be "documents/123/nda.pdf"
	DirectoryPath string
	UniquePrefix  bool
	Bucket        string
	ContentType   string
	S3            *minio.Client
}

func UploadFileToS3ByReader(ctx context.Context, fileName string, r io.Reader, size int64, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := CreateBucketIfNotExists(ctx, fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	info, err := fuo.S3.PutObject(
		ctx,
		fuo.Bucket,
		PrepareFileName(fileName, fuo),
		r,
		size,
		minio.PutObjectOptions{
			ContentType: fuo.ContentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

// Generates the final file name with uniqueness and prefix
func PrepareFileName(originalName string, fuo *FileUploadOptions) string {
	fileName := filepath.Base(originalName)

	if fuo != nil {
		if fuo.UniquePrefix {
			fileName = AddUniquePrefixToFileName(fileName)
		}

		if fuo.DirectoryPath != "" {
			fileName = filepath.Join(fuo.DirectoryPath, fileName)
		}
	}

	return fileName
}
