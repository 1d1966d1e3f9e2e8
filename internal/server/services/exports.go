package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	sc "github.com/dmitrijs2005/logitrack/internal/server/config"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Export describes an uploaded CSV report.
type Export struct {
	Key       string
	URL       string
	Rows      int
	ExpiresAt time.Time
}

// ExportStore uploads reports to the S3-compatible bucket (MinIO in
// development) and hands out presigned download links.
type ExportStore struct {
	config *sc.Config
}

func NewExportStore(config *sc.Config) *ExportStore {
	return &ExportStore{config: config}
}

// GetRandomStorageKey returns exports/YYYY/MM/DD/<uuid>.csv for t.
func GetRandomStorageKey(t time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/%02d/%v.csv", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ExportStore) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// Put uploads body under key and returns a presigned GET URL for it.
func (s *ExportStore) Put(ctx context.Context, key string, body []byte) (string, error) {
	client, presignClient, err := s.getClients(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("text/csv"),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

var containerCSVHeader = []string{
	"Container Number", "Tare Weight", "Type", "Booking Number", "Location",
	"Status", "Last Updated By", "Created At", "Updated At",
}

func containersCSV(list []*models.Container) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(containerCSVHeader); err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := w.Write([]string{
			c.ContainerNumber, c.TareWeight, c.Type, c.BookingNumber, c.Location,
			string(c.Status), c.LastUpdatedBy,
			c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
