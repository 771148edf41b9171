package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/cms"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/notion"
)

const maxCMSPageSize = 100

type documentRequest struct {
	Fields   map[string]cms.Field `json:"fields" validate:"required,min=1,dive"`
	Children []notion.BlockInput  `json:"children" validate:"dive"`
}

type appendBlocksRequest struct {
	Blocks []notion.BlockInput `json:"blocks" validate:"dive"`
}

func HandleCMSGetPage(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := cmsServiceFn().GetDocument(ctx, c.Params("id"))
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(doc)
}

// HandleCMSListDocuments supports ?cursor= and ?page_size= paging.
func HandleCMSListDocuments(c *fiber.Ctx) error {
	pageSize := c.QueryInt("page_size", 0)
	if pageSize < 0 || pageSize > maxCMSPageSize {
		pageSize = maxCMSPageSize
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := cmsServiceFn().ListDocuments(ctx, c.Params("id"), notion.DatabaseQuery{
		StartCursor: strings.TrimSpace(c.Query("cursor")),
		PageSize:    pageSize,
	})
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(list)
}

func HandleCMSCreateDocument(c *fiber.Ctx) error {
	var req documentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "fields must be non-empty and every field needs a type")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := cmsServiceFn().CreateDocument(ctx, c.Params("id"), req.Fields, req.Children)
	if err != nil {
		return cmsError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func HandleCMSUpdatePage(c *fiber.Ctx) error {
	var req documentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "fields must be non-empty and every field needs a type")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := cmsServiceFn().UpdateDocument(ctx, c.Params("id"), req.Fields)
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(doc)
}

func HandleCMSDeletePage(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cmsServiceFn().DeleteDocument(ctx, c.Params("id")); err != nil {
		return cmsError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func HandleCMSAppendBlocks(c *fiber.Ctx) error {
	var req appendBlocksRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "every block needs a type")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := cmsServiceFn().AppendContent(ctx, c.Params("id"), req.Blocks)
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "appended": n})
}

func HandleCMSGetSchema(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	schema, err := cmsServiceFn().GetSchema(ctx, c.Params("id"))
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(schema)
}

// HandleCMSListBlocks returns one page of body blocks; follow next_cursor
// with ?cursor=.
func HandleCMSListBlocks(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := cmsServiceFn().ListContent(ctx, c.Params("id"), strings.TrimSpace(c.Query("cursor")))
	if err != nil {
		return cmsError(c, err)
	}
	return c.JSON(list)
}

func HandleCMSUpdateBlock(c *fiber.Ctx) error {
	var req notion.BlockInput
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "type is required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cmsServiceFn().UpdateContentBlock(ctx, c.Params("id"), req); err != nil {
		return cmsError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func HandleCMSDeleteBlock(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cmsServiceFn().DeleteContentBlock(ctx, c.Params("id")); err != nil {
		return cmsError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func cmsError(c *fiber.Ctx, err error) error {
	var apiErr *notion.APIError
	switch {
	case errors.Is(err, notion.ErrUnsupportedPropertyType):
		return jsonError(c, fiber.StatusUnprocessableEntity, "unsupported_property_type", err.Error())
	case errors.Is(err, cms.ErrInvalidFields):
		return jsonError(c, fiber.StatusBadRequest, "invalid_fields", err.Error())
	case errors.Is(err, notion.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "cms_not_configured", "content backend is not configured")
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = fiber.StatusBadGateway
		}
		return jsonError(c, status, firstNonEmpty(apiErr.Code, "upstream_error"), apiErr.Message)
	default:
		log.Errorf("[CMS] request failed: %v", err)
		return jsonError(c, fiber.StatusBadGateway, "upstream_error", "")
	}
}
