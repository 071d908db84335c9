package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memStore struct {
	maxSize int64
	objects map[string][]byte
}

func (m *memStore) UploadFile(_ context.Context, bucket, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := bucket + "/" + folder + "/" + fileName
	m.objects[key] = content
	return key, nil
}

func (m *memStore) DownloadFile(_ context.Context, _, fileKey string) (io.ReadCloser, error) {
	content, ok := m.objects[fileKey]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *memStore) ValidateContentType(string) error { return nil }

func (m *memStore) ValidateFileSize(size int64) error {
	if size > m.maxSize {
		return errors.New("too large")
	}
	return nil
}

func TestOrderDocumentsRoundTrip(t *testing.T) {
	store := &memStore{maxSize: 1 << 20, objects: map[string][]byte{}}
	docs := NewOrderDocuments(store, "order-documents")
	docs.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }

	key, err := docs.StoreOrderDocument(context.Background(), "order.pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if key != "order-documents/2026/03/order.pdf" {
		t.Fatalf("unexpected key %q", key)
	}

	got, err := docs.LoadOrderDocument(context.Background(), key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestOrderDocumentsRejectsOversizedFiles(t *testing.T) {
	docs := NewOrderDocuments(&memStore{maxSize: 4, objects: map[string][]byte{}}, "b")
	if _, err := docs.StoreOrderDocument(context.Background(), "big.pdf", []byte("%PDF-1.7")); err == nil {
		t.Fatal("expected size error")
	}
}

func TestNewOrderDocumentsNilStore(t *testing.T) {
	if NewOrderDocuments(nil, "b") != nil {
		t.Fatal("expected nil archive without a store")
	}
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	id := uuid.MustParse("12345678-0000-0000-0000-000000000000")
	key := objectKey("2026/03", `..\..\secret\order.pdf`, id)
	if key != "2026/03/order_12345678.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
	if strings.Contains(key, "..") {
		t.Fatalf("key escapes folder: %q", key)
	}
}

func TestValidateContentTypeOnlyAllowsPDF(t *testing.T) {
	s := &MinIOService{maxFileSize: 10}
	if err := s.ValidateContentType("application/pdf; charset=binary"); err != nil {
		t.Fatalf("pdf rejected: %v", err)
	}
	if err := s.ValidateContentType("image/png"); err == nil {
		t.Fatal("png accepted")
	}
	if err := s.ValidateFileSize(0); err == nil {
		t.Fatal("empty file accepted")
	}
}
