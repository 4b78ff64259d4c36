package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"libroteca/internal/config"
	"libroteca/internal/http/handlers"
	applog "libroteca/internal/log"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN, cfg.Seed)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			formTok := c.FormValue("csrf")
			applog.Security(c, "csrf.fail", map[string]any{"form": formTok})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> ./web/static")
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		full := filepath.Join(mediaDir, clean)
		return c.SendFile(full, true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Public catalog
	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/books", deps.CatalogHandler.Books)
	app.Get("/book", func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This book is no longer available"})
	})
	app.Get("/book/:id", deps.CatalogHandler.BookDetail)
	app.Get("/authors", deps.CatalogHandler.Authors)

	// Events, blog, contact
	app.Get("/events", deps.ContentHandler.Events)
	app.Get("/event/:id", deps.ContentHandler.EventDetail)
	app.Get("/blog", deps.ContentHandler.Blog)
	app.Get("/blog/:id", deps.ContentHandler.BlogPost)
	app.Get("/contact", deps.ContentHandler.Contact)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.CatalogHandler.Check)

	// Cart, checkout, purchase history (all require a signed-in customer)
	app.Get("/cart", handlers.RequireUser(authSvc), deps.CartHandler.View)
	app.Post("/cart", handlers.RequireUser(authSvc), deps.CartHandler.Add)
	app.Post("/cart/update", handlers.RequireUser(authSvc), deps.CartHandler.Update)
	app.Post("/cart/remove", handlers.RequireUser(authSvc), deps.CartHandler.Remove)
	app.Post("/cart/clear", handlers.RequireUser(authSvc), deps.CartHandler.Clear)
	app.Get("/checkout", handlers.RequireUser(authSvc), deps.CheckoutHandler.Form)
	app.Post("/checkout", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)
	app.Get("/sale/:id", handlers.RequireUser(authSvc), deps.CheckoutHandler.SaleView)
	app.Get("/purchases", handlers.RequireUser(authSvc), deps.CheckoutHandler.Purchases)
	app.Get("/profile", handlers.RequireUser(authSvc), deps.ProfileHandler.Show)
	app.Post("/profile", handlers.RequireUser(authSvc), deps.ProfileHandler.Update)

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Admin back office
	adminH := deps.AdminHandler
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", adminH.Dashboard)
	admin.Get("/sales", adminH.SalesPage)
	admin.Post("/sales/:id/cancel", adminH.CancelSale)
	admin.Post("/sales/:id/status", adminH.UpdateSaleStatus)
	admin.Get("/books", adminH.BooksPage)
	admin.Post("/books", adminH.CreateBook)
	admin.Post("/books/:id", adminH.UpdateBook)
	admin.Post("/books/:id/delete", adminH.DeleteBook)
	admin.Get("/authors", adminH.AuthorsPage)
	admin.Post("/authors", adminH.CreateAuthor)
	admin.Post("/authors/:id", adminH.UpdateAuthor)
	admin.Post("/authors/:id/delete", adminH.DeleteAuthor)
	admin.Get("/publishers", adminH.PublishersPage)
	admin.Post("/publishers", adminH.CreatePublisher)
	admin.Post("/publishers/:id", adminH.UpdatePublisher)
	admin.Post("/publishers/:id/delete", adminH.DeletePublisher)
	admin.Get("/events", adminH.EventsPage)
	admin.Post("/events", adminH.CreateEvent)
	admin.Post("/events/:id", adminH.UpdateEvent)
	admin.Post("/events/:id/delete", adminH.DeleteEvent)
	admin.Get("/blog", adminH.BlogPage)
	admin.Post("/blog", adminH.CreatePost)
	admin.Post("/blog/:id", adminH.UpdatePost)
	admin.Post("/blog/:id/delete", adminH.DeletePost)
	admin.Get("/customers", adminH.CustomersPage)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
