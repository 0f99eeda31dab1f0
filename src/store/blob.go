package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Config represents object-storage configuration
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// BlobStorage implements domain.BlobStore on S3-compatible object storage.
type BlobStorage struct {
	s3Client *s3.S3
	config   *S3Config
	logger   *logrus.Logger
}

// NewBlobStorage S3クライアントを作成
func NewBlobStorage(config *S3Config, logger *logrus.Logger) (*BlobStorage, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(config.Region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, ""),
		DisableSSL:       aws.Bool(!config.UseSSL),
		S3ForcePathStyle: aws.Bool(true), // MinIOなどのS3互換ストレージ用
	}

	// エンドポイントが指定されている場合（MinIOなど）
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗: %w", err)
	}

	return &BlobStorage{
		s3Client: s3.New(sess),
		config:   config,
		logger:   logger,
	}, nil
}

// Put uploads an object under the given key.
func (b *BlobStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	// PutObjectはSeekerを要求するため一度読み切る（扱うファイルは小さい）
	buf, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}

	_, err = b.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf),
		ContentLength: aws.Int64(int64(len(buf))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]*string{
			"upload-time": aws.String(time.Now().Format(time.RFC3339)),
			"source":      aws.String("ria-board"),
		},
	})
	if err != nil {
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"bucket": b.config.Bucket,
		"key":    key,
		"size":   len(buf),
	}).Info("ファイルをS3にアップロードしました")

	return nil
}

// URL returns a presigned download URL for the given key.
func (b *BlobStorage) URL(ctx context.Context, key string) (string, error) {
	req, _ := b.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(15 * time.Minute)
	if err != nil {
		return "", fmt.Errorf("署名付きURLの生成に失敗: %w", err)
	}
	return url, nil
}

// Delete removes the object; missing keys are not an error.
func (b *BlobStorage) Delete(ctx context.Context, key string) error {
	_, err := b.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3オブジェクトの削除に失敗: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"bucket": b.config.Bucket,
		"key":    key,
	}).Info("S3オブジェクトを削除しました")

	return nil
}
