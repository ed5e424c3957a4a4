package api

import "time"

// ElementType is the closed set of element kinds a page can hold.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementHeading   ElementType = "heading"
	ElementImage     ElementType = "image"
	ElementTable     ElementType = "table"
	ElementChart     ElementType = "chart"
	ElementLine      ElementType = "line"
	ElementRectangle ElementType = "rectangle"
	ElementCircle    ElementType = "circle"
	ElementSignature ElementType = "signature"
	ElementBarcode   ElementType = "barcode"
	ElementQRCode    ElementType = "qrcode"
)

// ElementTypes lists every supported element type in a stable order.
var ElementTypes = []ElementType{
	ElementText, ElementHeading, ElementImage, ElementTable, ElementChart, ElementLine,
	ElementRectangle, ElementCircle, ElementSignature, ElementBarcode, ElementQRCode,
}

func (t ElementType) IsValid() bool {
	for _, v := range ElementTypes {
		if v == t {
			return true
		}
	}
	return false
}

type PageSize string

const (
	SizeA4     PageSize = "A4"
	SizeA3     PageSize = "A3"
	SizeLetter PageSize = "Letter"
	SizeLegal  PageSize = "Legal"
	SizeCustom PageSize = "Custom"
)

func (s PageSize) IsValid() bool {
	switch s {
	case SizeA4, SizeA3, SizeLetter, SizeLegal, SizeCustom:
		return true
	}
	return false
}

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

func (o Orientation) IsValid() bool {
	return o == Portrait || o == Landscape
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Spacing is used for margins and padding, in millimetres.
type Spacing struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

type Border struct {
	Width float64 `json:"width"`
	Style string  `json:"style"`
	Color string  `json:"color"`
}

type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Spread  float64 `json:"spread"`
	Color   string  `json:"color"`
}

// ElementStyles holds the optional visual styling of an element.
type ElementStyles struct {
	FontFamily      string   `json:"fontFamily,omitempty"`
	FontSize        float64  `json:"fontSize,omitempty"`
	FontWeight      string   `json:"fontWeight,omitempty"`
	FontStyle       string   `json:"fontStyle,omitempty"`
	TextDecoration  string   `json:"textDecoration,omitempty"`
	TextAlign       string   `json:"textAlign,omitempty"`
	Color           string   `json:"color,omitempty"`
	LineHeight      float64  `json:"lineHeight,omitempty"`
	LetterSpacing   float64  `json:"letterSpacing,omitempty"`
	Padding         *Spacing `json:"padding,omitempty"`
	Border          *Border  `json:"border,omitempty"`
	BorderRadius    float64  `json:"borderRadius,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
	Rotation        float64  `json:"rotation,omitempty"`
	Shadow          *Shadow  `json:"shadow,omitempty"`
}

type GlobalStyles struct {
	FontFamily      string  `json:"fontFamily"`
	FontSize        float64 `json:"fontSize"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor"`
	LineHeight      float64 `json:"lineHeight"`
}

type PageSettings struct {
	Size            PageSize    `json:"size"`
	Orientation     Orientation `json:"orientation"`
	Margins         Spacing     `json:"margins"`
	BackgroundColor string      `json:"backgroundColor"`
	ShowMargins     bool        `json:"showMargins"`
	CustomSize      *Size       `json:"customSize,omitempty"`
}

type BackgroundImage struct {
	URL      string  `json:"url"`
	Repeat   string  `json:"repeat,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
	Position string  `json:"position,omitempty"`
}

// Region is a header or footer strip. Height is in millimetres, 0 to 200.
type Region struct {
	Height               float64   `json:"height"`
	ReplicateAcrossPages bool      `json:"replicateAcrossPages"`
	Elements             []Element `json:"elements"`
}

const MaxRegionHeight = 200

// Element is a positioned, sized, typed unit on a page. Content always holds
// the variant matching Type; see content.go.
type Element struct {
	ID       string        `json:"id"`
	Type     ElementType   `json:"type"`
	Position Position      `json:"position"`
	Size     Size          `json:"size"`
	ZIndex   int           `json:"zIndex"`
	Visible  bool          `json:"visible"`
	Locked   bool          `json:"locked"`
	Styles   ElementStyles `json:"styles"`
	Content  Content       `json:"-"`
	// PageID is the legacy page-affinity marker carried by flat element lists.
	PageID string `json:"pageId,omitempty"`
}

type Page struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	PageNumber      int              `json:"pageNumber"`
	Elements        []Element        `json:"elements"`
	PageSettings    *PageSettings    `json:"pageSettings,omitempty"`
	BackgroundImage *BackgroundImage `json:"backgroundImage,omitempty"`
	Header          *Region          `json:"header,omitempty"`
	Footer          *Region          `json:"footer,omitempty"`
}

// Template is the full multi-page document.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"isPublic"`
	CreatedBy   string   `json:"createdBy,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Version     int64    `json:"version"`
	Revision    int64    `json:"revision"`
	Pages       []Page   `json:"pages"`
	// Elements is the legacy flat mirror of every page's elements.
	Elements     []Element     `json:"elements,omitempty"`
	PageSettings *PageSettings `json:"pageSettings,omitempty"`
	GlobalStyles *GlobalStyles `json:"globalStyles,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	// Persisted is set by the sync client once the store has accepted the
	// document; it decides create versus update on save.
	Persisted bool `json:"persisted,omitempty"`
}

// SaveMetadata overrides template fields on save. Version and Revision are
// forwarded only when set.
type SaveMetadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsPublic    *bool    `json:"isPublic,omitempty"`
	Version     *int64   `json:"version,omitempty"`
	Revision    *int64   `json:"revision,omitempty"`
}

// ListFilters are the query parameters accepted by the list endpoint.
type ListFilters struct {
	Category  string
	Tags      []string
	IsPublic  *bool
	CreatedBy string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type ListResult struct {
	Templates []Template `json:"templates"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportPNG  ExportFormat = "png"
	ExportHTML ExportFormat = "html"
	ExportJSON ExportFormat = "json"
)

type ExportOptions struct {
	Format          ExportFormat `json:"format"`
	Quality         int          `json:"quality,omitempty"`
	DPI             int          `json:"dpi,omitempty"`
	IncludeMetadata *bool        `json:"includeMetadata,omitempty"`
}

type ExportResult struct {
	URL      string       `json:"url"`
	Filename string       `json:"filename"`
	Format   ExportFormat `json:"format"`
}

type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
