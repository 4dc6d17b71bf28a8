package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"nssc-portal/config"
)

const (
	MaxUploadSize = 5 << 20
	sniffLen      = 3072
)

var (
	ErrUnsupportedFileType = errors.New("only PDF, JPEG and PNG files are accepted")
	ErrFileTooLarge        = errors.New("file exceeds the 5 MB limit")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileNotFound        = errors.New("file not found")
)

var allowedTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// StoredFile is the retrievable reference returned for an upload. URL is a
// permanent portal link; see FileLinks.
type StoredFile struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Object      string `json:"-"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// FileStore persists candidate uploads.
type FileStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64) (StoredFile, error)
	// PresignedURL is a short-lived download URL for a stored object.
	PresignedURL(ctx context.Context, object string) (string, error)
}

type MinioFileStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	links  FileLinks
	log    *zap.Logger
}

// NewMinioFileStore connects to MinIO and creates the bucket when missing.
func NewMinioFileStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*MinioFileStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		log.Info("created bucket", zap.String("bucket", cfg.MinioBucket))
	}

	return &MinioFileStore{
		client: client,
		bucket: cfg.MinioBucket,
		expiry: cfg.FileURLExpiry,
		links:  NewFileLinks(cfg.PublicURL, cfg.JWTKey),
		log:    log,
	}, nil
}

func (s *MinioFileStore) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64) (StoredFile, error) {
	mtype, body, err := Sniff(r, size)
	if err != nil {
		return StoredFile{}, err
	}

	object := ObjectName(folder, mtype.Extension())
	info, err := s.client.PutObject(ctx, s.bucket, object, body, size, minio.PutObjectOptions{
		ContentType: mtype.String(),
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("upload %s: %w", object, err)
	}

	link, err := s.links.URL(object)
	if err != nil {
		return StoredFile{}, err
	}

	s.log.Info("file uploaded", zap.String("object", object), zap.Int64("size", info.Size), zap.String("contentType", mtype.String()))
	return StoredFile{
		Name:        path.Base(filename),
		URL:         link,
		Object:      object,
		ContentType: mtype.String(),
		Size:        info.Size,
	}, nil
}

func (s *MinioFileStore) PresignedURL(ctx context.Context, object string) (string, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("stat %s: %w", object, err)
	}
	url, err := s.client.PresignedGetObject(ctx, s.bucket, object, s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", object, err)
	}
	return url.String(), nil
}

// Sniff detects the content type from the first bytes of r and returns a reader
// that still yields the whole content.
func Sniff(r io.Reader, size int64) (*mimetype.MIME, io.Reader, error) {
	if size == 0 {
		return nil, nil, ErrEmptyFile
	}
	if size > MaxUploadSize {
		return nil, nil, ErrFileTooLarge
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, ErrEmptyFile
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, nil, fmt.Errorf("%w (got %s)", ErrUnsupportedFileType, mtype.String())
	}
	return mtype, io.MultiReader(bytes.NewReader(head), r), nil
}

// ObjectName builds a collision free object key under folder.
func ObjectName(folder, ext string) string {
	var parts []string
	for _, p := range strings.Split(folder, "/") {
		if p == "" || p == "." || p == ".." {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(append(parts, uuid.NewString()+ext), "/")
}
