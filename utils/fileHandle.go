package utils

import (
	"context"
	"mime/multipart"

	"nssc-portal/store"
)

// SaveUploadedFile streams a multipart upload into the file store under destDir
func SaveUploadedFile(ctx context.Context, files store.FileStore, file *multipart.FileHeader, destDir string) (store.StoredFile, error) {
	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return store.StoredFile{}, err
	}
	defer src.Close()

	return files.Upload(ctx, destDir, file.Filename, src, file.Size)
}
