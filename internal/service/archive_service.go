package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/config"
	"github.com/GTDGit/supplyconnect/internal/models"
)

// ArchiveService stores uploaded sales files in S3 with SigV4-signed PUTs.
type ArchiveService struct {
	bucket     string
	region     string
	endpoint   string
	creds      aws.CredentialsProvider
	signer     *v4.Signer
	httpClient *http.Client
	now        func() time.Time
}

// NewArchiveService creates an archive service. It returns nil when no bucket
// is configured, and callers should then skip archiving.
func NewArchiveService(ctx context.Context, cfg *config.S3Config) (*ArchiveService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}
	if cfg.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ArchiveService{
		bucket:     cfg.Bucket,
		region:     awsCfg.Region,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		creds:      awsCfg.Credentials,
		signer:     v4.NewSigner(),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
	}, nil
}

// ObjectKey returns the archive key for a file: uploads/{yyyy-mm-dd}/{sha256}{ext}.
func ObjectKey(file *models.UploadedFile, at time.Time) string {
	return fmt.Sprintf("uploads/%s/%s%s", at.UTC().Format("2006-01-02"), file.SHA256, strings.ToLower(filepath.Ext(file.Name)))
}

// Archive uploads the file and returns its object key.
func (s *ArchiveService) Archive(ctx context.Context, file *models.UploadedFile) (string, error) {
	key := ObjectKey(file, s.now())

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.ObjectURL(key), bytes.NewReader(file.Data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(file.Data))

	sum := sha256.Sum256(file.Data)
	payloadHash := hex.EncodeToString(sum[:])
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve credentials: %w", err)
	}
	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, "s3", s.region, s.now().UTC()); err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload failed with status %d", resp.StatusCode)
	}

	log.Info().Str("key", key).Str("file", file.Name).Msg("sales file archived")
	return key, nil
}

// ObjectURL returns the URL for an object. A custom endpoint uses path-style addressing.
func (s *ArchiveService) ObjectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
