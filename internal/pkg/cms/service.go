package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/cache"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/notion"
)

const (
	pageCacheKeyPrefix = "cms:page:"
	defaultTTL         = 5 * time.Minute
)

// ErrInvalidFields wraps field values that cannot be encoded.
var ErrInvalidFields = errors.New("invalid fields")

// NotionAPI is the subset of the Notion client used by the CMS.
type NotionAPI interface {
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
	CreatePage(ctx context.Context, req notion.CreatePageRequest) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Page, error)
	ArchivePage(ctx context.Context, pageID string) error
	QueryDatabase(ctx context.Context, databaseID string, q notion.DatabaseQuery) (*notion.QueryResult, error)
	AppendBlockChildren(ctx context.Context, blockID string, children []notion.Block) (*notion.BlockList, error)
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	RetrieveBlockChildren(ctx context.Context, blockID, startCursor string) (*notion.BlockList, error)
	UpdateBlock(ctx context.Context, blockID string, block notion.Block) error
	DeleteBlock(ctx context.Context, blockID string) error
}

// Cache stores serialized documents. Get must return cache.ErrMiss for
// absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Field is one typed value to write to a page property.
type Field struct {
	Type  notion.PropertyType `json:"type" validate:"required"`
	Value any                 `json:"value"`
}

// DocumentList is one page of flattened database results.
type DocumentList struct {
	Documents  []notion.Document `json:"documents"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

// Schema is the title and property types of a database.
type Schema struct {
	ID         string                         `json:"id"`
	Title      string                         `json:"title"`
	Properties map[string]notion.PropertyType `json:"properties"`
}

// ContentBlock is the plain-text view of one body block.
type ContentBlock struct {
	ID   string           `json:"id"`
	Type notion.BlockType `json:"type"`
	Text string           `json:"text"`
}

// ContentList is one page of body blocks.
type ContentList struct {
	Blocks     []ContentBlock `json:"blocks"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type Service struct {
	notion NotionAPI
	cache  Cache
	ttl    time.Duration
}

// NewService builds a CMS service. cache may be nil to disable caching.
func NewService(api NotionAPI, c Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{notion: api, cache: c, ttl: ttl}
}

// GetDocument returns the flattened page, served from cache when possible.
func (s *Service) GetDocument(ctx context.Context, pageID string) (notion.Document, error) {
	if doc, ok := s.cached(ctx, pageID); ok {
		return doc, nil
	}

	page, err := s.notion.RetrievePage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	doc, err := notion.FlattenPage(*page)
	if err != nil {
		return nil, err
	}
	s.store(ctx, pageID, doc)
	return doc, nil
}

// ListDocuments queries a database and flattens every returned page.
func (s *Service) ListDocuments(ctx context.Context, databaseID string, q notion.DatabaseQuery) (*DocumentList, error) {
	res, err := s.notion.QueryDatabase(ctx, databaseID, q)
	if err != nil {
		return nil, err
	}

	out := &DocumentList{
		Documents: make([]notion.Document, 0, len(res.Results)),
		HasMore:   res.HasMore,
	}
	if res.NextCursor != nil {
		out.NextCursor = *res.NextCursor
	}
	for _, page := range res.Results {
		doc, err := notion.FlattenPage(page)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page.ID, err)
		}
		out.Documents = append(out.Documents, doc)
	}
	return out, nil
}

// CreateDocument creates a database page from typed fields and optional
// content blocks and returns the flattened result.
func (s *Service) CreateDocument(ctx context.Context, databaseID string, fields map[string]Field, children []notion.BlockInput) (notion.Document, error) {
	props, err := EncodeFields(fields)
	if err != nil {
		return nil, err
	}
	page, err := s.notion.CreatePage(ctx, notion.CreatePageRequest{
		DatabaseID: databaseID,
		Properties: props,
		Children:   notion.EncodeBlocks(children),
	})
	if err != nil {
		return nil, err
	}
	doc, err := notion.FlattenPage(*page)
	if err != nil {
		return nil, err
	}
	s.store(ctx, page.ID, doc)
	return doc, nil
}

func (s *Service) UpdateDocument(ctx context.Context, pageID string, fields map[string]Field) (notion.Document, error) {
	props, err := EncodeFields(fields)
	if err != nil {
		return nil, err
	}
	page, err := s.notion.UpdatePage(ctx, pageID, props)
	if err != nil {
		return nil, err
	}
	doc, err := notion.FlattenPage(*page)
	if err != nil {
		return nil, err
	}
	s.store(ctx, pageID, doc)
	return doc, nil
}

// DeleteDocument archives the page and drops it from the cache.
func (s *Service) DeleteDocument(ctx context.Context, pageID string) error {
	if err := s.notion.ArchivePage(ctx, pageID); err != nil {
		return err
	}
	s.invalidate(ctx, pageID)
	return nil
}

// AppendContent appends encoded blocks to the page body.
func (s *Service) AppendContent(ctx context.Context, pageID string, blocks []notion.BlockInput) (int, error) {
	if len(blocks) == 0 {
		return 0, nil
	}
	res, err := s.notion.AppendBlockChildren(ctx, pageID, notion.EncodeBlocks(blocks))
	if err != nil {
		return 0, err
	}
	return len(res.Results), nil
}

// GetSchema describes a database so clients know which field types to send.
func (s *Service) GetSchema(ctx context.Context, databaseID string) (*Schema, error) {
	db, err := s.notion.RetrieveDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	types, err := db.PropertyTypes()
	if err != nil {
		return nil, err
	}
	return &Schema{ID: db.ID, Title: db.TitleText(), Properties: types}, nil
}

// ListContent returns one page of the page body, starting at cursor.
func (s *Service) ListContent(ctx context.Context, pageID, cursor string) (*ContentList, error) {
	res, err := s.notion.RetrieveBlockChildren(ctx, pageID, cursor)
	if err != nil {
		return nil, err
	}
	out := &ContentList{
		Blocks:  make([]ContentBlock, 0, len(res.Results)),
		HasMore: res.HasMore,
	}
	if res.NextCursor != nil {
		out.NextCursor = *res.NextCursor
	}
	for _, b := range res.Results {
		out.Blocks = append(out.Blocks, ContentBlock{ID: b.ID, Type: b.Type, Text: b.PlainText()})
	}
	return out, nil
}

// UpdateContentBlock replaces the content of one body block. The block type
// must match the stored block.
func (s *Service) UpdateContentBlock(ctx context.Context, blockID string, in notion.BlockInput) error {
	return s.notion.UpdateBlock(ctx, blockID, notion.EncodeBlock(in))
}

func (s *Service) DeleteContentBlock(ctx context.Context, blockID string) error {
	return s.notion.DeleteBlock(ctx, blockID)
}

// EncodeFields encodes typed fields in name order so errors are stable.
func EncodeFields(fields map[string]Field) (map[string]notion.Property, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(map[string]notion.Property, len(fields))
	for _, name := range names {
		f := fields[name]
		p, err := notion.EncodeProperty(f.Type, f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrInvalidFields, name, err)
		}
		props[name] = p
	}
	return props, nil
}

func (s *Service) cached(ctx context.Context, pageID string) (notion.Document, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, pageCacheKeyPrefix+pageID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warnf("[CMS] cache read for page %s failed: %v", pageID, err)
		}
		return nil, false
	}
	var doc notion.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.Warnf("[CMS] dropping undecodable cache entry for page %s: %v", pageID, err)
		s.invalidate(ctx, pageID)
		return nil, false
	}
	return doc, true
}

func (s *Service) store(ctx context.Context, pageID string, doc notion.Document) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		log.Warnf("[CMS] could not encode page %s for cache: %v", pageID, err)
		return
	}
	if err := s.cache.Set(ctx, pageCacheKeyPrefix+pageID, string(raw), s.ttl); err != nil {
		log.Warnf("[CMS] cache write for page %s failed: %v", pageID, err)
	}
}

func (s *Service) invalidate(ctx context.Context, pageID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, pageCacheKeyPrefix+pageID); err != nil {
		log.Warnf("[CMS] cache delete for page %s failed: %v", pageID, err)
	}
}
