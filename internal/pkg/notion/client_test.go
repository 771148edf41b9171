package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{Token: "secret_test", APIBaseURL: srv.URL, HTTPClient: srv.Client()}
}

func TestClientRetrievePage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pages/page-123", r.URL.Path)
		assert.Equal(t, "Bearer secret_test", r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get("Notion-Version"))
		_, _ = io.WriteString(w, samplePage)
	})

	page, err := client.RetrievePage(context.Background(), "page-123")
	require.NoError(t, err)
	assert.Equal(t, "page-123", page.ID)
	assert.Len(t, page.Properties, 9)
}

func TestClientAppendBlockChildrenSendsEncodedBlocks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/blocks/page-1/children", r.URL.Path)

		var body struct {
			Children []map[string]any `json:"children"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Children, 2)
		assert.Equal(t, "embed", body.Children[0]["type"])
		assert.Equal(t, map[string]any{"url": "https://x.test"}, body.Children[0]["embed"])
		assert.Equal(t, "table_of_contents", body.Children[1]["type"])

		_, _ = io.WriteString(w, `{"object":"list","results":[{"object":"block","id":"b1","type":"embed","embed":{"url":"https://x.test"}}],"has_more":false}`)
	})

	out, err := client.AppendBlockChildren(context.Background(), "page-1", EncodeBlocks([]BlockInput{
		{Type: BlockEmbed, Value: "https://x.test"},
		{Type: BlockTableOfContents},
	}))
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "b1", out.Results[0].ID)
}

func TestClientArchivePage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"archived":true}`, string(raw))
		_, _ = io.WriteString(w, `{"object":"page","id":"p1","archived":true}`)
	})

	require.NoError(t, client.ArchivePage(context.Background(), "p1"))
}

func TestClientAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`)
	})

	_, err := client.RetrievePage(context.Background(), "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "object_not_found", apiErr.Code)
}

func TestClientWithoutTokenFails(t *testing.T) {
	client := &Client{APIBaseURL: "http://127.0.0.1:1"}
	_, err := client.RetrievePage(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientRetrieveBlockChildrenEscapesCursor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/blocks/page-1/children", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		assert.Equal(t, "a&b=c d", r.URL.Query().Get("start_cursor"))
		_, _ = io.WriteString(w, `{"object":"list","results":[{"object":"block","id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"hi"}]}}],"next_cursor":"n2","has_more":true}`)
	})

	out, err := client.RetrieveBlockChildren(context.Background(), "page-1", "a&b=c d")
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, BlockParagraph, out.Results[0].Type)
	assert.True(t, out.HasMore)
	require.NotNil(t, out.NextCursor)
	assert.Equal(t, "n2", *out.NextCursor)
}

func TestClientRetrieveDatabase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db-1", r.URL.Path)
		_, _ = io.WriteString(w, `{"object":"database","id":"db-1","title":[{"plain_text":"Posts"}],"properties":{"Name":{"id":"title","type":"title","title":{}}}}`)
	})

	db, err := client.RetrieveDatabase(context.Background(), "db-1")
	require.NoError(t, err)
	assert.Equal(t, "db-1", db.ID)
	assert.Contains(t, db.Properties, "Name")
}

func TestClientUpdateAndDeleteBlock(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPatch {
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"quote":{"rich_text":[{"text":{"content":"new"}}]}}`, string(raw))
		}
		_, _ = io.WriteString(w, `{"object":"block","id":"b1"}`)
	})

	require.NoError(t, client.UpdateBlock(context.Background(), "b1", EncodeBlock(BlockInput{Type: BlockQuote, Value: "new"})))
	require.NoError(t, client.DeleteBlock(context.Background(), "b1"))
	assert.Equal(t, []string{"PATCH /blocks/b1", "DELETE /blocks/b1"}, calls)
}

func TestClientRejectsOversizedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"object":"page","id":"p1","url":"`+strings.Repeat("x", maxResponseBytes)+`"}`)
	})

	_, err := client.RetrievePage(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}
