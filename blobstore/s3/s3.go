package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/config"
	"github.com/sf1tzp/symbology-sub000/fingerprint"
)

// ErrIncompleteS3Config is returned when the S3 configuration is incomplete
var ErrIncompleteS3Config = errors.New("incomplete S3 configuration")

// S3Store implements the blob store on an s3-compatible bucket.
type S3Store struct {
	S3Client *s3.Client
	Timeout  time.Duration
	Bucket   string
}

// New creates an s3-backed document store from configuration.
func New(cfg config.S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.AccessKey) == "" ||
		strings.TrimSpace(cfg.KeyID) == "" ||
		strings.TrimSpace(cfg.Endpoint) == "" ||
		strings.TrimSpace(cfg.Region) == "" ||
		strings.TrimSpace(cfg.Bucket) == "" ||
		strings.TrimSpace(cfg.Timeout) == "" {
		return nil, fmt.Errorf("%w", ErrIncompleteS3Config)
	}

	s3Client := s3.New(s3.Options{
		UsePathStyle: true,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Region:       cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.KeyID,
				cfg.AccessKey,
				"",
			),
		),
	})

	timeoutDuration, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 timeout value: %w", err)
	}

	return &S3Store{
		S3Client: s3Client,
		Timeout:  timeoutDuration,
		Bucket:   cfg.Bucket,
	}, nil
}

// StoreDocument uploads content to the bucket and returns its content hash.
func (s *S3Store) StoreDocument(
	ref blobstore.DocumentRef,
	content []byte,
) (string, error) {
	hash, ok := fingerprint.Compute(string(content))
	if !ok {
		return "", fmt.Errorf("refusing to store empty document content")
	}

	documentPath := s.getDocumentPath(ref, hash)

	uploader := manager.NewUploader(s.S3Client)

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(documentPath),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		var mu manager.MultiUploadFailure
		if errors.As(err, &mu) {
			log.Error().
				Msg(fmt.Sprintf("multi-upload failure (upload_id: %s): %v", mu.UploadID(), mu))

			return "", fmt.Errorf(
				"multi-upload failure (upload_id: %s): %w",
				mu.UploadID(),
				mu,
			)
		}

		log.Error().Err(err).Msg("upload failure")

		return "", fmt.Errorf("upload failure: %w", err)
	}
	log.Debug().
		Str("location", result.Location).
		Msg("successfully uploaded document to s3 bucket")

	return hash, nil
}

// GetDocument retrieves stored content by reference and hash.
func (s *S3Store) GetDocument(
	ref blobstore.DocumentRef,
	hash string,
) ([]byte, error) {
	documentPath := s.getDocumentPath(ref, hash)

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	object, err := s.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(documentPath),
	})
	if err != nil {
		var notFoundErr *types.NoSuchKey
		if errors.As(err, &notFoundErr) {
			return nil, blobstore.ErrDocumentNotFound
		}

		return nil, fmt.Errorf("failed to get document from S3: %w", err)
	}

	var content []byte
	if object.Body != nil {
		defer func() {
			_ = object.Body.Close()
		}()

		content, err = io.ReadAll(object.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read document body: %w", err)
		}
	}

	return content, nil
}

// DeleteDocument removes stored content from the bucket.
func (s *S3Store) DeleteDocument(
	ref blobstore.DocumentRef,
	hash string,
) error {
	documentPath := s.getDocumentPath(ref, hash)

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	_, err := s.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(documentPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document from S3: %w", err)
	}

	return nil
}

// getDocumentPath returns the object key for a document's content.
func (s *S3Store) getDocumentPath(
	ref blobstore.DocumentRef,
	hash string,
) string {
	return path.Join(ref.Ticker, ref.DocumentID.String(), hash+".html")
}
