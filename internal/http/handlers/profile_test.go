package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"libroteca/internal/http/handlers"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func newProfileApp(t *testing.T) (*fiber.App, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	h := &handlers.ProfileHandler{Auth: authSvc}

	engine := html.New("../../../web/templates", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })
	app := fiber.New(fiber.Config{Views: engine})
	app.Get("/profile", handlers.RequireUser(authSvc), h.Show)
	app.Post("/profile", handlers.RequireUser(authSvc), h.Update)
	return app, userRepo
}

func TestProfileUpdate(t *testing.T) {
	app, userRepo := newProfileApp(t)
	_ = userRepo.BindSession("sid-user", "u-maria")

	// Anonymous is bounced to login
	resp, err := app.Test(httptest.NewRequest("GET", "/profile", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous: got %d", resp.StatusCode)
	}

	form := url.Values{}
	form.Set("name", "María López")
	form.Set("phone", "+52 55 1234 5678")
	form.Set("address", "Calle 5 #10")
	req := httptest.NewRequest("POST", "/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-user"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("update: got %d", resp.StatusCode)
	}

	u, err := userRepo.ByID("u-maria")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "María López" || u.Phone != "+52 55 1234 5678" {
		t.Fatalf("got %+v", u)
	}

	// Empty name re-renders the form with the reason
	req = httptest.NewRequest("POST", "/profile", strings.NewReader("name="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-user"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name: got %d", resp.StatusCode)
	}
}
