package blob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("BLOB_BUCKET_NAME", "")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrNotConfigured)

	t.Setenv("BLOB_BUCKET_NAME", "assets")
	t.Setenv("BLOB_ACCESS_KEY_ID", "")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("BLOB_ACCESS_KEY_ID", "key")
	t.Setenv("BLOB_SECRET_ACCESS_KEY", "secret")
	t.Setenv("BLOB_ENDPOINT_URL", "https://s3.example.com/")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", cfg.EndpointURL)
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "uploads/u1/2025/03/abc.png", ObjectKey("u1", "abc", ".png", now))
}

func TestOwnedBy(t *testing.T) {
	assert.True(t, OwnedBy("u1", "uploads/u1/2025/03/abc.png"))
	assert.False(t, OwnedBy("u1", "uploads/u2/2025/03/abc.png"))
	assert.False(t, OwnedBy("u1", "uploads/u10/2025/03/abc.png"))
	assert.False(t, OwnedBy("u1", "uploads/u1/../u2/abc.png"))
	assert.False(t, OwnedBy("u1", "uploads/u1//abc.png"))
	assert.False(t, OwnedBy("u1", "uploads/u1/"))
	assert.False(t, OwnedBy("", "uploads//x.png"))
}

func TestPublicURL(t *testing.T) {
	cfg := &Config{BucketName: "assets", Region: "eu-central-1"}
	assert.Equal(t, "https://assets.s3.eu-central-1.amazonaws.com/k.png", cfg.PublicURL("k.png"))

	cfg.EndpointURL = "https://s3.example.com"
	assert.Equal(t, "https://s3.example.com/assets/k.png", cfg.PublicURL("k.png"))

	cfg.PublicBaseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/k.png", cfg.PublicURL("k.png"))
}
