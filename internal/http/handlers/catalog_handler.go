package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "libroteca/internal/log"
	"libroteca/internal/services"
	"libroteca/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	books, err := h.Catalog.Featured(8)
	if err != nil {
		applog.Error(c, "home.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}
	return render(c, "home", fiber.Map{"Books": books})
}

func (h *CatalogHandler) Books(c *fiber.Ctx) error {
	genre := ""
	if g, ok := validate.Genre(c.Query("genre")); ok {
		genre = g
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))

	books, err := h.Catalog.ListBooks(genre, page, 12)
	if err != nil {
		applog.Error(c, "books.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load books"})
	}
	return render(c, "books", fiber.Map{"Books": books, "Genre": genre, "Page": page})
}

func (h *CatalogHandler) BookDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This book is no longer available"})
	}
	b, err := h.Catalog.GetBook(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This book is no longer available"})
	}
	return render(c, "book", fiber.Map{"Book": b})
}

func (h *CatalogHandler) Authors(c *fiber.Ctx) error {
	authors, err := h.Catalog.ListAuthors()
	if err != nil {
		applog.Error(c, "authors.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load authors"})
	}
	return render(c, "authors", fiber.Map{"Authors": authors})
}

// Check is the availability JSON API.
func (h *CatalogHandler) Check(c *fiber.Ctx) error {
	bookID := strings.TrimSpace(c.Query("bookId"))
	if _, ok := validate.ID(bookID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing or invalid bookId",
		})
	}

	avail, err := h.Catalog.CheckAvailability(bookID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(avail)
}
