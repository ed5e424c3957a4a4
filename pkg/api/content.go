package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Content is the type-specific payload of an element. The set of
// implementations is closed: one struct per ElementType.
type Content interface {
	Kind() ElementType
	isContent()
}

type TextContent struct {
	Text string `json:"text"`
}

type HeadingContent struct {
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

type ImageContent struct {
	Src          string `json:"src"`
	Alt          string `json:"alt,omitempty"`
	OriginalSize *Size  `json:"originalSize,omitempty"`
	Fit          string `json:"fit,omitempty"`
}

type TableColumn struct {
	Key    string  `json:"key"`
	Header string  `json:"header"`
	Width  float64 `json:"width,omitempty"`
}

type TableContent struct {
	DataSource           string         `json:"dataSource"`
	Columns              []TableColumn  `json:"columns"`
	Data                 [][]string     `json:"data,omitempty"`
	ShowHeader           *bool          `json:"showHeader"`
	HeaderStyle          *ElementStyles `json:"headerStyle"`
	RowStyle             *ElementStyles `json:"rowStyle"`
	AlternatingRowColors bool           `json:"alternatingRowColors"`
	BorderStyle          string         `json:"borderStyle"`
	FontSize             float64        `json:"fontSize"`
	FontFamily           string         `json:"fontFamily"`
	MaxRows              int            `json:"maxRows"`
	PageBreak            bool           `json:"pageBreak"`
}

type ChartContent struct {
	ChartType      string   `json:"chartType"`
	DataSource     string   `json:"dataSource"`
	XAxis          string   `json:"xAxis"`
	YAxis          string   `json:"yAxis"`
	Title          string   `json:"title"`
	Width          string   `json:"width"`
	Height         string   `json:"height"`
	Colors         []string `json:"colors"`
	ShowLegend     *bool    `json:"showLegend"`
	ShowGrid       *bool    `json:"showGrid"`
	ShowLabels     *bool    `json:"showLabels"`
	Responsive     bool     `json:"responsive"`
	Animation      bool     `json:"animation"`
	LegendPosition string   `json:"legendPosition"`
}

type LineContent struct {
	StartPoint Position `json:"startPoint"`
	EndPoint   Position `json:"endPoint"`
	Thickness  float64  `json:"thickness"`
	Color      string   `json:"color,omitempty"`
	Style      string   `json:"style,omitempty"`
}

// Shape is shared by rectangle and circle content.
type Shape struct {
	FillColor   string  `json:"fillColor,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

type RectangleContent struct {
	Shape
	CornerRadius float64 `json:"cornerRadius,omitempty"`
}

type CircleContent struct {
	Shape
}

type SignatureContent struct {
	Label    string `json:"label,omitempty"`
	Signer   string `json:"signer,omitempty"`
	ImageSrc string `json:"imageSrc,omitempty"`
}

type BarcodeContent struct {
	Value    string `json:"value"`
	Format   string `json:"format,omitempty"`
	ShowText bool   `json:"showText"`
}

type QRCodeContent struct {
	Value           string `json:"value"`
	ErrorCorrection string `json:"errorCorrection,omitempty"`
}

func (*TextContent) Kind() ElementType      { return ElementText }
func (*HeadingContent) Kind() ElementType   { return ElementHeading }
func (*ImageContent) Kind() ElementType     { return ElementImage }
func (*TableContent) Kind() ElementType     { return ElementTable }
func (*ChartContent) Kind() ElementType     { return ElementChart }
func (*LineContent) Kind() ElementType      { return ElementLine }
func (*RectangleContent) Kind() ElementType { return ElementRectangle }
func (*CircleContent) Kind() ElementType    { return ElementCircle }
func (*SignatureContent) Kind() ElementType { return ElementSignature }
func (*BarcodeContent) Kind() ElementType   { return ElementBarcode }
func (*QRCodeContent) Kind() ElementType    { return ElementQRCode }

func (*TextContent) isContent()      {}
func (*HeadingContent) isContent()   {}
func (*ImageContent) isContent()     {}
func (*TableContent) isContent()     {}
func (*ChartContent) isContent()     {}
func (*LineContent) isContent()      {}
func (*RectangleContent) isContent() {}
func (*CircleContent) isContent()    {}
func (*SignatureContent) isContent() {}
func (*BarcodeContent) isContent()   {}
func (*QRCodeContent) isContent()    {}

// NewContent returns the empty variant for t, or nil for an unknown type.
func NewContent(t ElementType) Content {
	switch t {
	case ElementText:
		return &TextContent{}
	case ElementHeading:
		return &HeadingContent{}
	case ElementImage:
		return &ImageContent{}
	case ElementTable:
		return &TableContent{}
	case ElementChart:
		return &ChartContent{}
	case ElementLine:
		return &LineContent{}
	case ElementRectangle:
		return &RectangleContent{}
	case ElementCircle:
		return &CircleContent{}
	case ElementSignature:
		return &SignatureContent{}
	case ElementBarcode:
		return &BarcodeContent{}
	case ElementQRCode:
		return &QRCodeContent{}
	default:
		return nil
	}
}

// CloneContent returns a deep copy of c.
func CloneContent(c Content) Content {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	out := NewContent(c.Kind())
	if err := json.Unmarshal(b, out); err != nil {
		return nil
	}
	return out
}

// TextOf returns the text of text and heading content.
func TextOf(c Content) (string, bool) {
	switch v := c.(type) {
	case *TextContent:
		return v.Text, true
	case *HeadingContent:
		return v.Text, true
	default:
		return "", false
	}
}

// MarshalJSON writes the element with its content payload.
func (e Element) MarshalJSON() ([]byte, error) {
	type fields Element
	return json.Marshal(struct {
		fields
		Content Content `json:"content,omitempty"`
	}{fields(e), e.Content})
}

// UnmarshalJSON decodes the content payload into the variant selected by
// type. Text and heading content may be a bare JSON string.
func (e *Element) UnmarshalJSON(b []byte) error {
	type fields Element
	aux := struct {
		fields
		Content json.RawMessage `json:"content"`
	}{}
	aux.Visible = true
	aux.ZIndex = 1
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Element(aux.fields)
	c, err := decodeContent(e.Type, aux.Content)
	if err != nil {
		return fmt.Errorf("element %s: content: %w", e.ID, err)
	}
	e.Content = c
	return nil
}

func decodeContent(t ElementType, raw json.RawMessage) (Content, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	c := NewContent(t)
	if c == nil {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		switch v := c.(type) {
		case *TextContent:
			v.Text = s
		case *HeadingContent:
			v.Text = s
		case *ImageContent:
			v.Src = s
		case *BarcodeContent:
			v.Value = s
		case *QRCodeContent:
			v.Value = s
		default:
			return nil, fmt.Errorf("%s content must be an object", t)
		}
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	if img, ok := c.(*ImageContent); ok && img.Src == "" {
		// older documents used url instead of src
		var legacy struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal(raw, &legacy)
		img.Src = legacy.URL
	}
	return c, nil
}
