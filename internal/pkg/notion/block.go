package notion

import (
	"encoding/json"
	"fmt"
)

type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockQuote            BlockType = "quote"
	BlockToDo             BlockType = "to_do"
	BlockTableOfContents  BlockType = "table_of_contents"
	BlockCallout          BlockType = "callout"
	BlockEmbed            BlockType = "embed"
)

// BlockInput is the compact form of a child block as accepted by the API.
type BlockInput struct {
	Type  BlockType `json:"type" validate:"required"`
	Value any       `json:"value"`
}

// Block is a Notion block ready to be sent to the blocks API. It marshals to
// {"object":"block","type":T,T:payload}.
type Block struct {
	ID      string    `json:"-"`
	Type    BlockType `json:"-"`
	Payload any       `json:"-"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"object":       "block",
		"type":         b.Type,
		string(b.Type): b.Payload,
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads blocks returned by Notion, keeping the type payload raw.
func (b *Block) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var head struct {
		ID   string    `json:"id"`
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	b.ID = head.ID
	b.Type = head.Type
	if raw, ok := fields[string(head.Type)]; ok {
		b.Payload = raw
	}
	return nil
}

// PlainText returns the rich text of a block read from the API, or "" for
// blocks that carry none (dividers, embeds, tables of contents).
func (b Block) PlainText() string {
	raw, ok := b.Payload.(json.RawMessage)
	if !ok {
		return ""
	}
	var body struct {
		RichText []RichText `json:"rich_text"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return plainText(body.RichText)
}

// EncodeBlock converts a compact block into the payload Notion expects:
//
//	table_of_contents  {"color":"default"}
//	callout            value unchanged
//	embed              {"url": value}
//	anything else      {"rich_text":[{"text":{"content": value}}]}
func EncodeBlock(in BlockInput) Block {
	b := Block{Type: in.Type}
	switch in.Type {
	case BlockTableOfContents:
		b.Payload = map[string]any{"color": "default"}
	case BlockCallout:
		b.Payload = in.Value
	case BlockEmbed:
		b.Payload = map[string]any{"url": stringValue(in.Value)}
	default:
		b.Payload = map[string]any{
			"rich_text": []RichText{{Text: &TextContent{Content: stringValue(in.Value)}}},
		}
	}
	return b
}

// EncodeBlocks encodes a list of compact blocks, preserving order.
func EncodeBlocks(in []BlockInput) []Block {
	out := make([]Block, 0, len(in))
	for _, b := range in {
		out = append(out, EncodeBlock(b))
	}
	return out
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
