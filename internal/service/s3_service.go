package service

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/util"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	minioDefaultCredential = "minioadmin"
	maxAvatarPresignTTL    = 7 * 24 * time.Hour
)

// S3Service : ссылки на аватары, хранящиеся в бакете как ключи объектов
type S3Service struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("[S3Service] не задан s3Config.bucket")
	}

	var (
		client *s3.Client
		err    error
	)
	if cfg.Local {
		client = newMinioClient(cfg)
		err = ensureAvatarBucket(ctx, client, cfg.Bucket)
	} else {
		client, err = newAWSClient(ctx, cfg)
	}
	if err != nil {
		return nil, util.LogError("[S3Service] ошибка инициализации хранилища аватаров", err)
	}

	return &S3Service{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

// newMinioClient : path-style клиент для локального MinIO
func newMinioClient(cfg *config.S3Config) *s3.Client {
	accessKey, secretKey := cfg.AccessKey, cfg.SecretKey
	if accessKey == "" {
		accessKey, secretKey = minioDefaultCredential, minioDefaultCredential
	}

	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})
}

func newAWSClient(ctx context.Context, cfg *config.S3Config) (*s3.Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// ensureAvatarBucket : создает бакет, если HeadBucket ответил NotFound
func ensureAvatarBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("бакет %s недоступен: %w", bucket, err)
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("ошибка создания бакета %s: %w", bucket, err)
	}

	slog.InfoContext(ctx, "создан бакет для аватаров", "bucket", bucket)
	return nil
}

// GeneratePresignedGetURL : временная ссылка на объект аватара.
// S3 не подписывает ссылки дольше недели, поэтому срок обрезается.
func (s *S3Service) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", errors.New("[S3Service] пустой ключ объекта")
	}
	if expire <= 0 || expire > maxAvatarPresignTTL {
		expire = maxAvatarPresignTTL
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", util.LogError("[S3Service] не удалось подписать ссылку на аватар", err)
	}

	return req.URL, nil
}
