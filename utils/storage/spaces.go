// Package storage uploads account avatars to an S3-compatible bucket
// (DigitalOcean Spaces in production).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxAvatarBytes is the largest accepted avatar upload.
const MaxAvatarBytes = 2 << 20

var (
	ErrNotConfigured     = errors.New("avatar storage is not configured")
	ErrAvatarTooLarge    = errors.New("avatar must be at most 2 MB")
	ErrUnsupportedAvatar = errors.New("avatar must be a PNG, JPEG, GIF or WebP image")
)

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SpacesConfig holds configuration for Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// Configured reports whether enough settings are present to build a client.
func (c SpacesConfig) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// SpacesClient handles DigitalOcean Spaces operations
type SpacesClient struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	if !config.Configured() {
		return nil, ErrNotConfigured
	}
	if config.Endpoint == "" {
		config.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String("https://" + strings.TrimPrefix(config.Endpoint, "https://")),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create Spaces session")
	}

	return newSpacesClient(s3.New(sess), config), nil
}

func newSpacesClient(api s3iface.S3API, config SpacesConfig) *SpacesClient {
	return &SpacesClient{
		s3Client: api,
		bucket:   config.Bucket,
		endpoint: strings.TrimPrefix(config.Endpoint, "https://"),
		cdnURL:   strings.TrimSuffix(config.CDNURL, "/"),
	}
}

// DetectAvatarType sniffs the image type of data and enforces the size limit.
func DetectAvatarType(data []byte) (string, error) {
	if len(data) > MaxAvatarBytes {
		return "", ErrAvatarTooLarge
	}
	contentType := http.DetectContentType(data)
	if _, ok := avatarExtensions[contentType]; !ok {
		return "", ErrUnsupportedAvatar
	}
	return contentType, nil
}

// AvatarKey is the object key of a new avatar for userID.
func AvatarKey(userID uint, contentType string) string {
	return path.Join("avatars", fmt.Sprint(userID), uuid.New().String()+avatarExtensions[contentType])
}

// UploadAvatar stores a validated image and returns its public URL.
func (s *SpacesClient) UploadAvatar(ctx context.Context, userID uint, data []byte) (string, error) {
	contentType, err := DetectAvatarType(data)
	if err != nil {
		return "", err
	}
	key := AvatarKey(userID, contentType)

	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ACL:          aws.String("public-read"),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", errors.Wrap(err, "upload avatar")
	}
	return s.FileURL(key), nil
}

// DeleteByURL removes the object behind a URL previously returned by
// UploadAvatar. URLs outside this bucket are ignored.
func (s *SpacesClient) DeleteByURL(ctx context.Context, url string) error {
	key, ok := s.keyOf(url)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "delete avatar")
}

// FileURL returns the public URL for a key
func (s *SpacesClient) FileURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

func (s *SpacesClient) keyOf(url string) (string, bool) {
	for _, prefix := range []string{s.cdnURL + "/", fmt.Sprintf("https://%s.%s/", s.bucket, s.endpoint)} {
		if prefix != "/" && strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix), true
		}
	}
	return "", false
}
