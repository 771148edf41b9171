package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const defaultAvatarSize = 200

// GravatarURL returns the Gravatar image for an email address. Gravatar
// accepts SHA-256 hashes of the trimmed, lowercased address.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = defaultAvatarSize
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), size)
}

// AvatarURL prefers the stored avatar (set by social login) and falls back
// to Gravatar.
func AvatarURL(stored, email string) string {
	if s := strings.TrimSpace(stored); s != "" {
		return s
	}
	return GravatarURL(email, defaultAvatarSize)
}
