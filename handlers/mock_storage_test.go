package handlers

import "mime/multipart"

type mockStorage struct {
	UploadProductImageFn  func(file multipart.File, filename, contentType string) (string, error)
	UploadCategoryImageFn func(file multipart.File, filename, contentType string) (string, error)
	DeleteFileFn          func(objectPath string) error
	DeleteFileCalls       []string
	UploadCallCount       int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadProductImage(file multipart.File, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if m.UploadProductImageFn != nil {
		return m.UploadProductImageFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/products/test_image.jpg", nil
}

func (m *mockStorage) UploadCategoryImage(file multipart.File, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if m.UploadCategoryImageFn != nil {
		return m.UploadCategoryImageFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/categories/test_image.jpg", nil
}

func (m *mockStorage) DeleteFile(objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}
