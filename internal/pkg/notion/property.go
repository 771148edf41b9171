package notion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPropertyType is returned when a property carries a type tag
// the codec does not know how to map.
var ErrUnsupportedPropertyType = errors.New("unsupported property type")

type PropertyType string

const (
	PropertyTitle          PropertyType = "title"
	PropertyRichText       PropertyType = "rich_text"
	PropertyNumber         PropertyType = "number"
	PropertyCheckbox       PropertyType = "checkbox"
	PropertySelect         PropertyType = "select"
	PropertyStatus         PropertyType = "status"
	PropertyMultiSelect    PropertyType = "multi_select"
	PropertyDate           PropertyType = "date"
	PropertyURL            PropertyType = "url"
	PropertyEmail          PropertyType = "email"
	PropertyPhoneNumber    PropertyType = "phone_number"
	PropertyCreatedTime    PropertyType = "created_time"
	PropertyLastEditedTime PropertyType = "last_edited_time"
)

// TextContent is the "text" member of a rich text item.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

// RichText is a single run of formatted text. Only text runs are produced
// when encoding; mentions and equations are read through PlainText.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
	Href      string       `json:"href,omitempty"`
}

// SelectOption is used by select, status and multi_select properties.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// Property is one typed page property. Type selects which payload field is
// meaningful; the remaining fields stay nil.
type Property struct {
	ID             string         `json:"id,omitempty"`
	Type           PropertyType   `json:"type"`
	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	Checkbox       *bool          `json:"checkbox,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	Status         *SelectOption  `json:"status,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	URL            *string        `json:"url,omitempty"`
	Email          *string        `json:"email,omitempty"`
	PhoneNumber    *string        `json:"phone_number,omitempty"`
	CreatedTime    *string        `json:"created_time,omitempty"`
	LastEditedTime *string        `json:"last_edited_time,omitempty"`
}

// MarshalJSON writes an explicit null payload for cleared nullable
// properties; Notion ignores a property whose payload key is absent.
func (p Property) MarshalJSON() ([]byte, error) {
	type plain Property
	raw, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	if !p.clearedNullable() {
		return raw, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields[string(p.Type)] = json.RawMessage("null")
	return json.Marshal(fields)
}

func (p Property) clearedNullable() bool {
	switch p.Type {
	case PropertyNumber:
		return p.Number == nil
	case PropertySelect:
		return p.Select == nil
	case PropertyStatus:
		return p.Status == nil
	case PropertyDate:
		return p.Date == nil
	case PropertyURL:
		return p.URL == nil
	case PropertyEmail:
		return p.Email == nil
	case PropertyPhoneNumber:
		return p.PhoneNumber == nil
	default:
		return false
	}
}

// Page is a Notion page with its properties.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	Archived       bool                `json:"archived,omitempty"`
	URL            string              `json:"url,omitempty"`
	Properties     map[string]Property `json:"properties"`
}

// Document is the flattened key/value view of a page.
type Document map[string]any

// DocumentIDKey holds the page identifier inside a flattened document.
const DocumentIDKey = "id"

// Decode maps the property to a plain Go value:
//
//	title, rich_text                          string
//	number                                    float64, or nil when unset
//	checkbox                                  bool
//	select, status                            string (option name)
//	multi_select                              []string
//	date                                      string (start)
//	url, email, phone_number                  string
//	created_time, last_edited_time            string
func (p Property) Decode() (any, error) {
	switch p.Type {
	case PropertyTitle:
		return plainText(p.Title), nil
	case PropertyRichText:
		return plainText(p.RichText), nil
	case PropertyNumber:
		if p.Number == nil {
			return nil, nil
		}
		return *p.Number, nil
	case PropertyCheckbox:
		return p.Checkbox != nil && *p.Checkbox, nil
	case PropertySelect:
		return optionName(p.Select), nil
	case PropertyStatus:
		return optionName(p.Status), nil
	case PropertyMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return names, nil
	case PropertyDate:
		if p.Date == nil {
			return "", nil
		}
		return p.Date.Start, nil
	case PropertyURL:
		return deref(p.URL), nil
	case PropertyEmail:
		return deref(p.Email), nil
	case PropertyPhoneNumber:
		return deref(p.PhoneNumber), nil
	case PropertyCreatedTime:
		return deref(p.CreatedTime), nil
	case PropertyLastEditedTime:
		return deref(p.LastEditedTime), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPropertyType, p.Type)
	}
}

// FlattenPage decodes every property of the page into one document and adds
// the page id under DocumentIDKey. An unsupported property fails the whole
// page; nothing is dropped silently.
func FlattenPage(page Page) (Document, error) {
	doc := make(Document, len(page.Properties)+1)
	for name, prop := range page.Properties {
		v, err := prop.Decode()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		doc[name] = v
	}
	doc[DocumentIDKey] = page.ID
	return doc, nil
}

// EncodeProperty builds the Notion payload for a value of the given type. It
// is the inverse of Decode for every writable type. A nil value, or "" for
// select, status, date, url, email and phone_number, clears the property.
func EncodeProperty(t PropertyType, value any) (Property, error) {
	p := Property{Type: t}
	if isClear(t, value) {
		return p, nil
	}
	switch t {
	case PropertyTitle:
		s, err := asString(t, value)
		if err != nil {
			return Property{}, err
		}
		p.Title = textRuns(s)
	case PropertyRichText:
		s, err := asString(t, value)
		if err != nil {
			return Property{}, err
		}
		p.RichText = textRuns(s)
	case PropertyNumber:
		n, err := asFloat(value)
		if err != nil {
			return Property{}, err
		}
		p.Number = &n
	case PropertyCheckbox:
		b, ok := value.(bool)
		if !ok {
			return Property{}, fmt.Errorf("checkbox expects bool, got %T", value)
		}
		p.Checkbox = &b
	case PropertySelect, PropertyStatus:
		s, err := asString(t, value)
		if err != nil {
			return Property{}, err
		}
		opt := &SelectOption{Name: s}
		if t == PropertySelect {
			p.Select = opt
		} else {
			p.Status = opt
		}
	case PropertyMultiSelect:
		names, err := asStrings(value)
		if err != nil {
			return Property{}, err
		}
		p.MultiSelect = make([]SelectOption, 0, len(names))
		for _, n := range names {
			p.MultiSelect = append(p.MultiSelect, SelectOption{Name: n})
		}
	case PropertyDate:
		s, err := asString(t, value)
		if err != nil {
			return Property{}, err
		}
		p.Date = &DateValue{Start: s}
	case PropertyURL, PropertyEmail, PropertyPhoneNumber:
		s, err := asString(t, value)
		if err != nil {
			return Property{}, err
		}
		switch t {
		case PropertyURL:
			p.URL = &s
		case PropertyEmail:
			p.Email = &s
		default:
			p.PhoneNumber = &s
		}
	default:
		// created_time and last_edited_time are read-only in the Notion API
		return Property{}, fmt.Errorf("%w: %q", ErrUnsupportedPropertyType, t)
	}
	return p, nil
}

func plainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

func isClear(t PropertyType, v any) bool {
	switch t {
	case PropertyNumber:
		return v == nil
	case PropertySelect, PropertyStatus, PropertyDate, PropertyURL, PropertyEmail, PropertyPhoneNumber:
		s, ok := v.(string)
		return v == nil || (ok && s == "")
	default:
		return false
	}
}

func textRuns(s string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: s}}}
}

func optionName(opt *SelectOption) string {
	if opt == nil {
		return ""
	}
	return opt.Name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func asString(t PropertyType, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s expects string, got %T", t, v)
	}
	return s, nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("number expects a numeric value, got %T", v)
	}
}

func asStrings(v any) ([]string, error) {
	switch vals := v.(type) {
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("multi_select expects strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("multi_select expects a list of strings, got %T", v)
	}
}
