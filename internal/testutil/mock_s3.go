package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/s3"
	"github.com/stretchr/testify/mock"
)

var _ s3.Service = (*MockS3Service)(nil)

// MockS3Service stands in for the document archive
type MockS3Service struct {
	mock.Mock
}

func NewMockS3Service() *MockS3Service {
	return &MockS3Service{}
}

func (m *MockS3Service) UploadDocument(ctx context.Context, document *s3.Document) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockS3Service) GetPresignedUrl(ctx context.Context, id string, docType s3.DocumentType) (string, error) {
	args := m.Called(ctx, id, docType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GetDocument(ctx context.Context, id string, docType s3.DocumentType) ([]byte, error) {
	args := m.Called(ctx, id, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) Exists(ctx context.Context, id string, docType s3.DocumentType) (bool, error) {
	args := m.Called(ctx, id, docType)
	return args.Bool(0), args.Error(1)
}
