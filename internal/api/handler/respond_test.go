package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestWantsXML(t *testing.T) {
	cases := map[string]bool{
		"":                                  false,
		"application/json":                  false,
		"application/xml":                   true,
		"text/xml":                          true,
		"application/json, application/xml": false,
		"application/xml, application/json": true,
		"application/xml;q=0.9, */*":        false,
		"application/xml, */*":              true,
		"text/html, text/xml":               true,
		"Application/XML":                   true,
		"*/*":                               false,
		"text/html":                         false,

		"application/xml;q=0.1, application/json": false,
		"application/json;q=0.5, application/xml": true,
		"application/json;q=0, text/xml;q=0.2":    true,
	}
	for accept, want := range cases {
		c, _ := newContext(request{method: http.MethodGet, target: "/", accept: accept})
		if got := WantsXML(c); got != want {
			t.Fatalf("WantsXML(%q) = %v, want %v", accept, got, want)
		}
	}
}

func TestHealth_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]DependencyCheck
		want   int
	}{
		{"all up", map[string]DependencyCheck{"mongodb": ok, "redis": ok}, http.StatusOK},
		{"one down", map[string]DependencyCheck{"mongodb": ok, "postgres": down}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(request{method: http.MethodGet, target: "/health/ready"})
			if err := NewHealthDependenciesHandler(tc.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

var _ echo.Validator = NewValidator()
