package firebase

import "mime/multipart"

// StorageClient abstracts Firebase Storage operations for dependency injection and testing.
type StorageClient interface {
	UploadProductImage(file multipart.File, filename, contentType string) (string, error)
	UploadCategoryImage(file multipart.File, filename, contentType string) (string, error)
	DeleteFile(objectPath string) error
}

// FirebaseStorageClient is the real implementation that delegates to package-level functions.
type FirebaseStorageClient struct{}

func NewStorageClient() StorageClient {
	return &FirebaseStorageClient{}
}

func (f *FirebaseStorageClient) UploadProductImage(file multipart.File, filename, contentType string) (string, error) {
	return uploadImage(file, "products", filename, contentType)
}

func (f *FirebaseStorageClient) UploadCategoryImage(file multipart.File, filename, contentType string) (string, error) {
	return uploadImage(file, "categories", filename, contentType)
}

func (f *FirebaseStorageClient) DeleteFile(objectPath string) error {
	return DeleteFile(objectPath)
}
