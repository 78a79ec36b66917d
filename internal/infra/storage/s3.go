package storage

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	BucketURL string // public base URL, no trailing slash
}

// S3Service stores media and document blobs and hands back public URLs.
type S3Service struct {
	s3Client *s3.S3
	cfg      S3Config
}

func NewS3Service(cfg S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket not configured")
	}
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}

	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &S3Service{s3Client: s3.New(sess), cfg: cfg}, nil
}

// UploadMedia stores an outgoing media payload. Keys combine lead id,
// a nanosecond timestamp and the original filename so repeated sends of
// the same file never collide.
func (s *S3Service) UploadMedia(data []byte, leadID, filename, contentType string) (string, error) {
	key := fmt.Sprintf("leads/%s/%d_%s", leadID, time.Now().UnixNano(), sanitizeFilename(filename))
	return s.UploadBytes(data, key, contentType)
}

// UploadDocument stores a document image for extraction under its kind.
func (s *S3Service) UploadDocument(data []byte, docType, filename, contentType string) (string, error) {
	if docType == "" {
		docType = "sonstiges"
	}
	key := fmt.Sprintf("documents/%s/%d_%s", sanitizeFilename(docType), time.Now().UnixNano(), sanitizeFilename(filename))
	return s.UploadBytes(data, key, contentType)
}

func (s *S3Service) UploadBytes(data []byte, key string, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}

	fileURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.BucketURL, "/"), key)
	log.Printf("📦 Upload abgeschlossen: %s", fileURL)

	return fileURL, nil
}

// sanitizeFilename keeps S3 keys flat and URL-safe. Only the base name
// survives; everything outside a small safe set becomes an underscore.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "datei"
	}
	return b.String()
}
