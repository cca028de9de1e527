package api

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"paperchat/types"

	"github.com/gofiber/fiber/v2"
)

func testApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandler_TaxonomyMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"extraction", &types.ExtractionError{Path: "x.pdf", Err: fmt.Errorf("bad xref")}, fiber.StatusBadRequest},
		{"embedding", &types.EmbeddingError{Err: fmt.Errorf("quota")}, fiber.StatusBadGateway},
		{"store", &types.StoreError{Op: "query", Err: fmt.Errorf("down")}, fiber.StatusServiceUnavailable},
		{"config", &types.ConfigError{Param: "chunk_overlap", Reason: "too big"}, fiber.StatusInternalServerError},
		{"api error", ErrBadRequest("nope"), fiber.StatusBadRequest},
		{"validation", NewValidationError(map[string]string{"SessionID": "required"}), fiber.StatusUnprocessableEntity},
		{"wrapped extraction", fmt.Errorf("ingest: %w", &types.ExtractionError{Path: "y.pdf", Err: fmt.Errorf("eof")}), fiber.StatusBadRequest},
		{"unknown", fmt.Errorf("something else"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := testApp(tc.err)
			resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestCheckHandler_Healthy(t *testing.T) {
	app := fiber.New()
	app.Get("/check/healthy", NewCheckHandler().HandleHealthy)

	resp, err := app.Test(httptest.NewRequest("GET", "/check/healthy", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
