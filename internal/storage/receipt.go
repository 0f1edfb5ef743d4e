// Package storage issues upload locations for payment receipts. The service
// never reads receipt contents; it only keeps the returned reference.
package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"entertainer-booking/internal/domain"
	"entertainer-booking/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload is a one-off location a client PUTs a receipt file to.
type Upload struct {
	Ref       string    `json:"receipt_ref"`
	URL       string    `json:"upload_url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReceiptStore interface {
	PresignUpload(ctx context.Context, bookingID uuid.UUID, contentType string) (*Upload, error)
}

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type S3ReceiptStore struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// NewReceiptStore returns an S3-backed store, or a disabled one when no bucket is configured.
func NewReceiptStore(config utils.StorageConfig, log *zap.Logger) ReceiptStore {
	log = log.With(zap.String("component", "receipt_store"))
	if config.Bucket == "" {
		log.Warn("Receipt storage not configured, uploads disabled")
		return disabledStore{}
	}

	opts := s3.Options{
		Region: config.Region,
	}
	if config.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		opts.BaseEndpoint = aws.String(config.Endpoint)
		opts.UsePathStyle = true
	}

	ttl := time.Duration(config.PresignMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3ReceiptStore{
		presign: s3.NewPresignClient(s3.New(opts)),
		bucket:  config.Bucket,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

func (s *S3ReceiptStore) PresignUpload(ctx context.Context, bookingID uuid.UUID, contentType string) (*Upload, error) {
	key, err := ReceiptKey(bookingID, contentType)
	if err != nil {
		return nil, err
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		s.log.Error("Failed to presign receipt upload",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, domain.NewUnavailable(domain.CodeStorageUnavailable, "receipt storage is unavailable, try again later")
	}

	return &Upload{
		Ref:       "s3://" + s.bucket + "/" + key,
		URL:       req.URL,
		Method:    req.Method,
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

// ReceiptKey builds the object key for a new receipt of a booking.
func ReceiptKey(bookingID uuid.UUID, contentType string) (string, error) {
	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", domain.NewValidation(domain.CodeValidationFailed, "content_type", "receipt must be a JPEG, PNG, WebP image or a PDF")
	}
	return path.Join("receipts", bookingID.String(), uuid.NewString()+ext), nil
}

type disabledStore struct{}

func (disabledStore) PresignUpload(ctx context.Context, bookingID uuid.UUID, contentType string) (*Upload, error) {
	return nil, domain.NewUnavailable(domain.CodeStorageUnavailable, "receipt uploads are not enabled")
}
