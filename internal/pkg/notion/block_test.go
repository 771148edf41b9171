package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeToMap(t *testing.T, in BlockInput) map[string]any {
	t.Helper()
	raw, err := json.Marshal(EncodeBlock(in))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEncodeBlockTableOfContents(t *testing.T) {
	out := encodeToMap(t, BlockInput{Type: BlockTableOfContents, Value: "ignored"})
	assert.Equal(t, "block", out["object"])
	assert.Equal(t, "table_of_contents", out["type"])
	assert.Equal(t, map[string]any{"color": "default"}, out["table_of_contents"])
}

func TestEncodeBlockCalloutPassesValueThrough(t *testing.T) {
	callout := map[string]any{
		"icon":      map[string]any{"emoji": "💡"},
		"rich_text": []any{map[string]any{"text": map[string]any{"content": "Tip"}}},
	}
	out := encodeToMap(t, BlockInput{Type: BlockCallout, Value: callout})
	assert.Equal(t, callout, out["callout"])
}

func TestEncodeBlockEmbed(t *testing.T) {
	out := encodeToMap(t, BlockInput{Type: BlockEmbed, Value: "https://youtu.be/x"})
	assert.Equal(t, map[string]any{"url": "https://youtu.be/x"}, out["embed"])
}

func TestEncodeBlockDefaultsToRichText(t *testing.T) {
	for _, typ := range []BlockType{BlockParagraph, BlockHeading2, "custom_block"} {
		out := encodeToMap(t, BlockInput{Type: typ, Value: "Hello"})
		want := map[string]any{
			"rich_text": []any{map[string]any{"text": map[string]any{"content": "Hello"}}},
		}
		assert.Equal(t, want, out[string(typ)], "type %s", typ)
	}
}

func TestBlockUnmarshalKeepsPayload(t *testing.T) {
	raw := []byte(`{"object":"block","id":"b1","type":"embed","embed":{"url":"https://x.test"}}`)
	var b Block
	require.NoError(t, json.Unmarshal(raw, &b))

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, BlockEmbed, b.Type)
	payload, ok := b.Payload.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"url":"https://x.test"}`, string(payload))
}

func TestEncodeBlocksKeepsOrder(t *testing.T) {
	blocks := EncodeBlocks([]BlockInput{
		{Type: BlockHeading1, Value: "Title"},
		{Type: BlockTableOfContents},
		{Type: BlockParagraph, Value: "Body"},
	})
	require.Len(t, blocks, 3)
	assert.Equal(t, BlockHeading1, blocks[0].Type)
	assert.Equal(t, BlockTableOfContents, blocks[1].Type)
	assert.Equal(t, BlockParagraph, blocks[2].Type)
}
