// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skytunes/skytunes-backend/internal/config"
)

// StorageService handles audio uploads: content is pinned to IPFS via
// Pinata when a JWT is configured, and the original file is archived to
// S3 when AWS credentials are configured. With neither, files land in a
// local uploads directory (dev only).
type StorageService struct {
	s3Client   *s3.S3
	httpClient *http.Client
	config     *config.Config
}

type UploadResult struct {
	CID      string `json:"cid,omitempty"`
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

const maxAudioSize = 50 * 1024 * 1024 // 50MB

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported file type")

	allowedAudioTypes = []string{".mp3", ".wav", ".flac", ".ogg", ".m4a"}
)

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		config:     cfg,
	}

	if cfg.AWS.AccessKeyID == "" {
		// No S3 archival configured; Pinata or the local fallback
		// still work.
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

func (s *StorageService) UploadAudio(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxAudioSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, header.Size, maxAudioSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, t := range allowedAudioTypes {
		if ext == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	key := s.generateFileName(header.Filename)

	if s.s3Client != nil {
		if err := s.archiveToS3(fileBytes, key, contentType); err != nil {
			// Archival is best effort; the pin is the canonical copy.
			logrus.WithError(err).WithField("key", key).Warn("S3 archival failed")
		}
	}

	if s.config.Pinata.JWT != "" {
		cid, err := s.pinToIPFS(ctx, fileBytes, header.Filename, contentType)
		if err != nil {
			return nil, err
		}
		return &UploadResult{
			CID:      cid,
			URL:      fmt.Sprintf("%s/ipfs/%s", s.config.Pinata.GatewayURL, cid),
			Key:      key,
			Size:     int64(len(fileBytes)),
			MimeType: contentType,
		}, nil
	}

	return s.uploadToLocal(fileBytes, key, contentType)
}

func (s *StorageService) pinToIPFS(ctx context.Context, fileBytes []byte, filename, contentType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build pin request: %w", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return "", fmt.Errorf("failed to build pin request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build pin request: %w", err)
	}

	url := s.config.Pinata.APIBaseURL + "/pinning/pinFileToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build pin request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Pinata.JWT)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to pin file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("pinata returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var pinResp struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pinResp); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinResp.IpfsHash == "" {
		return "", fmt.Errorf("pinata response missing IpfsHash")
	}

	return pinResp.IpfsHash, nil
}

func (s *StorageService) archiveToS3(fileBytes []byte, key, contentType string) error {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	outDir := "./uploads"
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	outPath := filepath.Join(outDir, filepath.Base(key))
	if err := os.WriteFile(outPath, fileBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write local file: %w", err)
	}

	logrus.WithField("path", outPath).Warn("No Pinata JWT configured, stored upload locally (dev only)")

	return &UploadResult{
		URL:      fmt.Sprintf("http://%s:%s/uploads/%s", s.config.Server.Host, s.config.Server.Port, filepath.Base(key)),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) generateFileName(originalName string) string {
	id := uuid.New()
	ext := filepath.Ext(originalName)
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("audio/%s_%s%s", timestamp, id.String()[:8], ext)
}
