// Package soap serves the user and token operations over SOAP 1.1 on /ws.
package soap

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/domain"
)

const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	UsersNS    = "http://actu.com/users"
	SecurityNS = "http://actu.com/security"

	faultClient = "soapenv:Client"
	faultServer = "soapenv:Server"

	contentType = "text/xml; charset=utf-8"
)

// requestEnvelope is the first, untyped pass over a request. Only the
// credential header and the name of the body's root element are kept.
type requestEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Header  struct {
		Authorization []string `xml:"http://actu.com/security Authorization"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Header"`
	Body struct {
		Payload *struct {
			XMLName xml.Name
		} `xml:",any"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

// operation returns the qualified name of the body's root element.
func (e *requestEnvelope) operation() xml.Name {
	if e.Body.Payload == nil {
		return xml.Name{}
	}
	return e.Body.Payload.XMLName
}

func parseEnvelope(raw []byte) (*requestEnvelope, error) {
	var env requestEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed SOAP envelope", domain.ErrInvalidInput)
	}
	if env.Body.Payload == nil {
		return nil, fmt.Errorf("%w: empty SOAP body", domain.ErrInvalidInput)
	}
	return &env, nil
}

// typedEnvelope is the second pass, decoding the body's root element into T.
type typedEnvelope[T any] struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Payload T `xml:",any"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

func decodePayload[T any](raw []byte) (T, error) {
	var env typedEnvelope[T]
	if err := xml.Unmarshal(raw, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: malformed request payload", domain.ErrInvalidInput)
	}
	return env.Body.Payload, nil
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	NS      string   `xml:"xmlns:soapenv,attr"`
	Header  struct{} `xml:"soapenv:Header"`
	Body    struct {
		Content any
	} `xml:"soapenv:Body"`
}

type fault struct {
	XMLName xml.Name `xml:"soapenv:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
}

func writeEnvelope(c echo.Context, status int, content any) error {
	env := responseEnvelope{NS: EnvelopeNS}
	env.Body.Content = content

	out, err := xml.Marshal(env)
	if err != nil {
		return err
	}
	return c.Blob(status, contentType, append([]byte(xml.Header), out...))
}

// writeFault answers with HTTP 500 as SOAP 1.1 requires for every fault.
func writeFault(c echo.Context, code, message string) error {
	return writeEnvelope(c, http.StatusInternalServerError, fault{Code: code, String: message})
}
