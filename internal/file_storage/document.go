package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/minio/minio-go/v7"
)

// Document is a stored PDF. Ref is the object key and doubles as the
// documentRef of a signing request.
type Document struct {
	Ref         string
	BucketName  string
	FileName    string
	ContentType string
	Size        int64
	PageCount   int
}

// DocumentStore keeps the bytes of source documents in an S3 bucket.
type DocumentStore struct {
	s3     *minio.Client
	bucket string
}

func NewDocumentStore(s3 *minio.Client, bucket string) *DocumentStore {
	return &DocumentStore{s3: s3, bucket: bucket}
}

func (ds *DocumentStore) Bucket() string {
	return ds.bucket
}

// Put validates data as a PDF and uploads it under the owner's directory.
func (ds *DocumentStore) Put(ctx context.Context, ownerUserID, fileName string, data []byte) (*Document, error) {
	pages, err := InspectPDF(data)
	if err != nil {
		return nil, err
	}

	opts := &util.FileUploadOptions{
		DirectoryPath: util.GetOwnerDocumentDirectoryPath(ownerUserID),
		UniquePrefix:  true,
		Bucket:        ds.bucket,
		ContentType:   "application/pdf",
		S3:            ds.s3,
	}
	info, err := util.UploadFileToS3ByReader(ctx, fileName, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, err
	}

	return &Document{
		Ref:         info.Key,
		BucketName:  ds.bucket,
		FileName:    fileName,
		ContentType: opts.ContentType,
		Size:        info.Size,
		PageCount:   pages,
	}, nil
}

// PresignedURL hands out a temporary read link for ref.
func (ds *DocumentStore) PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("document ref cannot be empty")
	}

	u, err := ds.s3.PresignedGetObject(ctx, ds.bucket, ref, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
