package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidateBySniff(t *testing.T) {
	mime, err := ValidateBySniff("photo.PNG", pngHead)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = ValidateBySniff("doc.pdf", []byte("%PDF-1.7\n"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestValidateBySniffRejects(t *testing.T) {
	_, err := ValidateBySniff("script.exe", pngHead)
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = ValidateBySniff("page.png", []byte("<!DOCTYPE html><html></html>"))
	assert.ErrorIs(t, err, ErrScriptableContent)

	_, err = ValidateBySniff("image.jpg", []byte(`<?xml version="1.0"?><svg></svg>`))
	assert.ErrorIs(t, err, ErrScriptableContent)

	_, err = ValidateBySniff("fake.jpg", pngHead)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValidateBySniff("notes.png", []byte("just some plain text"))
	assert.ErrorIs(t, err, ErrTypeNotSupported)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", ExtensionFor("A.JPEG"))
	assert.Equal(t, ".pdf", ExtensionFor("x.pdf"))
}
