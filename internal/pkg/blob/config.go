package blob

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

// Config holds the S3-compatible bucket settings
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // optional, for S3-compatible services
	PublicBaseURL   string // optional CDN or bucket website URL
}

// LoadConfig reads BLOB_* variables. It returns ErrNotConfigured when no
// bucket is set.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("BLOB_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("BLOB_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("BLOB_REGION", "us-east-1"),
		BucketName:      env.GetEnv("BLOB_BUCKET_NAME", ""),
		EndpointURL:     strings.TrimRight(env.GetEnv("BLOB_ENDPOINT_URL", ""), "/"),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("BLOB_PUBLIC_BASE_URL", ""), "/"),
	}

	if cfg.BucketName == "" {
		return nil, ErrNotConfigured
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("BLOB_ACCESS_KEY_ID is required when BLOB_BUCKET_NAME is set")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("BLOB_SECRET_ACCESS_KEY is required when BLOB_BUCKET_NAME is set")
	}
	return cfg, nil
}

// ObjectKey builds the key for a user upload:
// uploads/<userUUID>/YYYY/MM/<random><ext>.
func ObjectKey(userUUID, id, ext string, now time.Time) string {
	return fmt.Sprintf("%s%04d/%02d/%s%s", userPrefix(userUUID), now.Year(), int(now.Month()), id, ext)
}

// OwnedBy reports whether key lies under the upload prefix of userUUID.
func OwnedBy(userUUID, key string) bool {
	if userUUID == "" || !strings.HasPrefix(key, userPrefix(userUUID)) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func userPrefix(userUUID string) string {
	return "uploads/" + userUUID + "/"
}

// PublicURL returns the address a stored object can be fetched from.
func (c *Config) PublicURL(key string) string {
	switch {
	case c.PublicBaseURL != "":
		return c.PublicBaseURL + "/" + key
	case c.EndpointURL != "":
		return fmt.Sprintf("%s/%s/%s", c.EndpointURL, c.BucketName, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, key)
	}
}
