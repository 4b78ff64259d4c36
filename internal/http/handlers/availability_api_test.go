package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"libroteca/internal/http/handlers"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func newAvailabilityApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	h := &handlers.CatalogHandler{Catalog: services.NewCatalogService(
		repos.NewBookRepo(db), repos.NewAuthorRepo(db), repos.NewPublisherRepo(db))}

	app := fiber.New()
	app.Get("/api/v1/availability", h.Check)
	return app
}

func TestAvailabilityAPI(t *testing.T) {
	app := newAvailabilityApp(t)

	// Missing bookId -> 400 JSON error
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/availability", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing id: got %d", resp.StatusCode)
	}

	// Injection-looking input is rejected the same way
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/availability?bookId=1%27%20OR%201=1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: got %d", resp.StatusCode)
	}

	// Seeded book -> IN_STOCK with quantity
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/availability?bookId=b-1984", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "IN_STOCK" || body.Qty != 8 {
		t.Fatalf("got %+v", body)
	}

	// Unknown book is OUT_OF_STOCK, not an error
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/availability?bookId=nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown id: got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "OUT_OF_STOCK" {
		t.Fatalf("got %+v", body)
	}
}
