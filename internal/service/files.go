package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"festapp/chat_backend/internal/config"
	"festapp/chat_backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Префикс ключей загруженных файлов внутри бакета
const uploadKeyPrefix = "uploads"

// UploadedFile результат загрузки файла
type UploadedFile struct {
	FileName   string    `json:"fileName"`
	StoredName string    `json:"storedName"`
	FileURL    string    `json:"fileUrl"`
	FileSize   int64     `json:"fileSize"`
	FileType   string    `json:"fileType"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileService хранит файлы чата в S3-совместимом хранилище (MinIO)
type FileService struct {
	config   *config.Config
	uploader *manager.Uploader
	s3Client *s3.Client
}

func NewFileService(cfg *config.Config) (*FileService, error) {
	// Используем BaseEndpoint для кастомного endpoint
	s3Opts := []func(*s3.Options){}

	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // Обязательно для MinIO
		})
	}

	credsProvider := credentials.NewStaticCredentialsProvider(
		cfg.S3AccessKeyID,
		cfg.S3SecretAccessKey,
		"",
	)

	awsCfg := aws.Config{
		Region:      cfg.S3Region,
		Credentials: credsProvider,
	}

	s3Client := s3.NewFromConfig(awsCfg, s3Opts...)

	service := &FileService{
		config:   cfg,
		uploader: manager.NewUploader(s3Client),
		s3Client: s3Client,
	}

	log.Printf("🔧 file storage initialized with endpoint: %s", cfg.S3Endpoint)
	return service, nil
}

// FileTypeFromName относит файл к изображениям или документам по расширению
func FileTypeFromName(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return model.FileTypeImage
	default:
		return model.FileTypeDocument
	}
}

// Upload кладет файл в бакет под uuid-ключом и возвращает метаданные
// с относительным URL (абсолютный собирается на границе ответа)
func (s *FileService) Upload(ctx context.Context, file io.Reader, filename, contentType string, size int64) (*UploadedFile, error) {
	storedName := fmt.Sprintf("%s-%s", uuid.New().String(), path.Base(filename))
	key := path.Join(uploadKeyPrefix, storedName)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &UploadedFile{
		FileName:   filename,
		StoredName: storedName,
		FileURL:    "/" + key,
		FileSize:   size,
		FileType:   FileTypeFromName(filename),
		MimeType:   contentType,
		UploadedAt: time.Now(),
	}, nil
}

// Download отдает содержимое файла по сохраненному имени
func (s *FileService) Download(ctx context.Context, storedName string) (io.ReadCloser, string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3BucketName),
		Key:    aws.String(path.Join(uploadKeyPrefix, path.Base(storedName))),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}

	return out.Body, contentType, nil
}

func (s *FileService) HealthCheck(ctx context.Context) error {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.S3BucketName),
	})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}
