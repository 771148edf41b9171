package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

const (
	defaultAPIBaseURL = "https://api.notion.com/v1"
	apiVersion        = "2022-06-28"
	maxResponseBytes  = 4 << 20
)

var (
	// ErrNotConfigured is returned by every call when no API token is set.
	ErrNotConfigured = errors.New("NOTION_API_TOKEN is not configured")
	// ErrResponseTooLarge means the API answered with more than maxResponseBytes.
	ErrResponseTooLarge = errors.New("notion response exceeds size limit")
)

// APIError is a non-2xx answer from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

type Client struct {
	Token      string
	APIBaseURL string
	HTTPClient *http.Client
}

// QueryResult is one page of a database query.
type QueryResult struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// BlockList is one page of block children.
type BlockList struct {
	Object     string  `json:"object"`
	Results    []Block `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// Database is the subset of database metadata the CMS needs.
type Database struct {
	Object     string                     `json:"object"`
	ID         string                     `json:"id"`
	Title      []RichText                 `json:"title"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// TitleText is the database title as plain text.
func (d Database) TitleText() string {
	return plainText(d.Title)
}

// PropertyTypes maps every schema property to its type tag.
func (d Database) PropertyTypes() (map[string]PropertyType, error) {
	out := make(map[string]PropertyType, len(d.Properties))
	for name, raw := range d.Properties {
		var head struct {
			Type PropertyType `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = head.Type
	}
	return out, nil
}

// DatabaseQuery mirrors the body of POST /databases/{id}/query.
type DatabaseQuery struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       any    `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// CreatePageRequest creates a page inside a database.
type CreatePageRequest struct {
	DatabaseID string
	Properties map[string]Property
	Children   []Block
}

func NewClientFromEnv() *Client {
	return &Client{
		Token:      strings.TrimSpace(env.GetEnv("NOTION_API_TOKEN", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("NOTION_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": req.DatabaseID},
		"properties": req.Properties,
	}
	if len(req.Children) > 0 {
		body["children"] = req.Children
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) (*Page, error) {
	var page Page
	body := map[string]any{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ArchivePage is Notion's delete: the page moves to the trash.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, map[string]any{"archived": true}, nil)
}

func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery) (*QueryResult, error) {
	var out QueryResult
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RetrieveBlockChildren(ctx context.Context, blockID, startCursor string) (*BlockList, error) {
	q := url.Values{}
	q.Set("page_size", "100")
	if startCursor != "" {
		q.Set("start_cursor", startCursor)
	}
	path := "/blocks/" + blockID + "/children?" + q.Encode()
	var out BlockList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) (*BlockList, error) {
	var out BlockList
	body := map[string]any{"children": children}
	if err := c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBlock(ctx context.Context, blockID string, block Block) error {
	body := map[string]any{string(block.Type): block.Payload}
	return c.do(ctx, http.MethodPatch, "/blocks/"+blockID, body, nil)
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/blocks/"+blockID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.APIBaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("notion: reading %s %s response: %w", method, path, err)
	}
	if len(raw) > maxResponseBytes {
		return fmt.Errorf("%w: %s %s", ErrResponseTooLarge, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
