package controllers

import (
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/blob"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/upload"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
)

const sniffLen = 512

// HandleBlobUpload stores the multipart "file" field in the bucket.
func HandleBlobUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "missing_file", "multipart field \"file\" is required")
	}
	maxBytes := int64(env.GetEnvInt("BLOB_MAX_UPLOAD_BYTES", 10<<20))
	if fh.Size <= 0 || fh.Size > maxBytes {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "file is empty or exceeds the upload limit")
	}

	f, err := fh.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_file", "file could not be read")
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return jsonError(c, fiber.StatusBadRequest, "invalid_file", "file could not be read")
	}
	head = head[:n]

	mime, err := upload.ValidateBySniff(fh.Filename, head)
	if err != nil {
		return jsonError(c, fiber.StatusUnsupportedMediaType, "unsupported_file_type", err.Error())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	store, err := blobStoreFn(ctx)
	if err != nil {
		return blobStoreError(c, err)
	}

	key := blob.ObjectKey(userCtx.UserUUID, uuid.NewString(), upload.ExtensionFor(fh.Filename), time.Now().UTC())
	obj, err := store.Put(ctx, key, f, fh.Size, mime)
	if err != nil {
		log.Errorf("[Blob] upload for user %d failed: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "upload_failed", "")
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// HandleBlobDelete removes one of the caller's uploads. Keys outside the
// caller's prefix answer 404 so other users' keys are not disclosed.
func HandleBlobDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	key := c.Params("*")
	if !blob.OwnedBy(userCtx.UserUUID, key) {
		return jsonError(c, fiber.StatusNotFound, "not_found", "no such upload")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	store, err := blobStoreFn(ctx)
	if err != nil {
		return blobStoreError(c, err)
	}
	if err := store.Delete(ctx, key); err != nil {
		log.Errorf("[Blob] delete of %s for user %d failed: %v", key, userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "delete_failed", "")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func blobStoreError(c *fiber.Ctx, err error) error {
	if errors.Is(err, blob.ErrNotConfigured) {
		return jsonError(c, fiber.StatusServiceUnavailable, "blob_not_configured", "file storage is not configured")
	}
	log.Errorf("[Blob] client init failed: %v", err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
}
