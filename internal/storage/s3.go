package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStorage отвечает за хранилище изображений объектов и отчётов.
// Работает с AWS S3 и совместимыми сервисами (MinIO, DO Spaces, R2).
type ImageStorage struct {
	client         *s3.Client
	bucket         string
	folder         string
	publicURL      string
	maxUploadBytes int64
}

// Config хранилища.
type Config struct {
	Region      string
	Bucket      string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	Folder      string
	MaxUploadMB int64
}

// NewImageStorage создаёт S3-хранилище и проверяет наличие бакета.
func NewImageStorage(ctx context.Context, cfg Config) (*ImageStorage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось загрузить конфигурацию AWS: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style обязателен для MinIO и части S3-совместимых сервисов
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	publicURL := ""
	if cfg.Endpoint == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		publicURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	storage := &ImageStorage{
		client:         client,
		bucket:         cfg.Bucket,
		folder:         strings.Trim(cfg.Folder, "/"),
		publicURL:      publicURL,
		maxUploadBytes: cfg.MaxUploadMB * 1024 * 1024,
	}

	if err := storage.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

// ensureBucket проверяет наличие бакета и создаёт его при отсутствии.
func (s *ImageStorage) ensureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}); err == nil {
		return nil
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}); err != nil {
		return fmt.Errorf("storage: бакет %q недоступен и не может быть создан: %w", s.bucket, err)
	}

	return nil
}

// Save сохраняет изображение и возвращает его ключ в бакете.
// Ключ имеет вид <folder>/<prefix>-<rand>.<ext>, где prefix - идентификатор
// объекта или метка времени для не привязанных загрузок.
func (s *ImageStorage) Save(ctx context.Context, prefix, originalName, contentType string, r io.Reader) (string, error) {
	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}

	var buf bytes.Buffer
	written, err := io.Copy(&buf, &limited)
	if err != nil {
		return "", fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	if written > s.maxUploadBytes {
		return "", fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if prefix == "" {
		prefix = fmt.Sprintf("%d", time.Now().Unix())
	}

	key := fmt.Sprintf("%s/%s-%s%s", s.folder, prefix, randomSuffix(), strings.ToLower(filepath.Ext(sanitizeFilename(originalName))))

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("storage: ошибка загрузки в S3: %w", err)
	}

	return key, nil
}

// ValidKey сообщает, относится ли ключ к каталогу изображений.
// Ключи вне каталога и с переходами вверх по дереву отклоняются.
func (s *ImageStorage) ValidKey(key string) bool {
	key = strings.Trim(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, s.folder+"/")
}

// Delete удаляет изображение по ключу. Ключи за пределами каталога
// изображений не принимаются.
func (s *ImageStorage) Delete(ctx context.Context, key string) error {
	if !s.ValidKey(key) {
		return fmt.Errorf("storage: ключ %q вне каталога изображений", key)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("storage: ошибка удаления из S3: %w", err)
	}

	return nil
}

// PublicURL возвращает публичный адрес изображения.
func (s *ImageStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// randomSuffix возвращает короткий случайный суффикс для уникальности ключа.
func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06d", time.Now().Nanosecond()%1000000)
	}
	return hex.EncodeToString(b)
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "image"
	}
	return name
}
