package storage

import (
	"context"
	"strings"
	"testing"

	"entertainer-booking/internal/domain"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func TestReceiptKey(t *testing.T) {
	bookingID := uuid.New()
	key, err := ReceiptKey(bookingID, "Image/PNG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "receipts/"+bookingID.String()+"/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %s", key)
	}

	if _, err := ReceiptKey(bookingID, "text/html"); !domain.HasCode(err, domain.CodeValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPresignUpload(t *testing.T) {
	store := NewReceiptStore(utils.StorageConfig{
		Bucket:         "receipts-test",
		Region:         "ap-southeast-2",
		Endpoint:       "http://localhost:9000",
		AccessKey:      "key",
		SecretKey:      "secret",
		PresignMinutes: 5,
	}, zaptest.NewLogger(t))

	up, err := store.PresignUpload(context.Background(), uuid.New(), "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(up.Ref, "s3://receipts-test/receipts/") {
		t.Fatalf("unexpected ref %s", up.Ref)
	}
	if !strings.HasPrefix(up.URL, "http://localhost:9000/receipts-test/") || !strings.Contains(up.URL, "X-Amz-Signature") {
		t.Fatalf("unexpected url %s", up.URL)
	}
	if up.Method != "PUT" {
		t.Fatalf("unexpected method %s", up.Method)
	}
}

func TestDisabledStore(t *testing.T) {
	store := NewReceiptStore(utils.StorageConfig{}, zaptest.NewLogger(t))
	_, err := store.PresignUpload(context.Background(), uuid.New(), "image/png")
	if !domain.HasCode(err, domain.CodeStorageUnavailable) {
		t.Fatalf("expected StorageUnavailable, got %v", err)
	}
}
