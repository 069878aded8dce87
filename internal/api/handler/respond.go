package handler

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/munnerz/goautoneg"
)

// representations are the media types handlers can produce. The first one
// wins a tie and is the default.
var representations = []string{echo.MIMEApplicationJSON, echo.MIMEApplicationXML, echo.MIMETextXML}

// WantsXML reports whether the Accept header, weighed by its q-values,
// prefers XML over JSON. JSON is the default.
func WantsXML(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	if strings.TrimSpace(accept) == "" {
		return false
	}
	switch goautoneg.Negotiate(strings.ToLower(accept), representations) {
	case echo.MIMEApplicationXML, echo.MIMETextXML:
		return true
	default:
		return false
	}
}

// respond writes v as JSON, or as XML rooted at name when the client asks.
func respond(c echo.Context, status int, name string, v any) error {
	if WantsXML(c) {
		return c.XML(status, named{name: name, v: v})
	}
	return c.JSON(status, v)
}

// respondList writes items as a JSON array, or as <root><item/>...</root>.
func respondList[T any](c echo.Context, status int, root, item string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if WantsXML(c) {
		return c.XML(status, xmlList[T]{root: root, item: item, items: items})
	}
	return c.JSON(status, items)
}

type named struct {
	name string
	v    any
}

func (n named) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return e.EncodeElement(n.v, xml.StartElement{Name: xml.Name{Local: n.name}})
}

type xmlList[T any] struct {
	root, item string
	items      []T
}

func (l xmlList[T]) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: l.root}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range l.items {
		if err := e.EncodeElement(it, xml.StartElement{Name: xml.Name{Local: l.item}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
