// Package storage provides S3-compatible object storage for casting documents:
// order attachments posted with a casting order and purchase-order PDFs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// DocumentStore is the subset of object storage the document archive needs.
type DocumentStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

const pdfContentType = "application/pdf"

// OrderDocuments archives order PDFs in one bucket, foldered by upload month.
type OrderDocuments struct {
	store  DocumentStore
	bucket string
	now    func() time.Time
}

// NewOrderDocuments returns nil when store is nil so callers can skip wiring.
func NewOrderDocuments(store DocumentStore, bucket string) *OrderDocuments {
	if store == nil {
		return nil
	}
	return &OrderDocuments{store: store, bucket: bucket, now: time.Now}
}

// StoreOrderDocument uploads a PDF and returns its object key.
func (d *OrderDocuments) StoreOrderDocument(ctx context.Context, fileName string, content []byte) (string, error) {
	if err := d.store.ValidateContentType(pdfContentType); err != nil {
		return "", err
	}
	if err := d.store.ValidateFileSize(int64(len(content))); err != nil {
		return "", err
	}
	folder := d.now().Format("2006/01")
	key, err := d.store.UploadFile(ctx, d.bucket, folder, fileName, pdfContentType, bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("storage store order document: %w", err)
	}
	return key, nil
}

// LoadOrderDocument reads a stored document back.
func (d *OrderDocuments) LoadOrderDocument(ctx context.Context, key string) ([]byte, error) {
	rc, err := d.store.DownloadFile(ctx, d.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("storage load order document: %w", err)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage read order document %s: %w", key, err)
	}
	return content, nil
}
