package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "libroteca/internal/log"
	"libroteca/internal/services"
	"libroteca/internal/validate"
)

type ContentHandler struct {
	Content *services.ContentService
}

func (h *ContentHandler) Events(c *fiber.Ctx) error {
	events, err := h.Content.UpcomingEvents()
	if err != nil {
		applog.Error(c, "events.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load events"})
	}
	return render(c, "events", fiber.Map{"Events": events})
}

func (h *ContentHandler) EventDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Event not found"})
	}
	ev, err := h.Content.GetEvent(id)
	if err != nil || !ev.Active {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Event not found"})
	}
	return render(c, "event", fiber.Map{"Event": ev})
}

func (h *ContentHandler) Blog(c *fiber.Ctx) error {
	posts, err := h.Content.ActivePosts()
	if err != nil {
		applog.Error(c, "blog.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the blog"})
	}
	return render(c, "blog", fiber.Map{"Posts": posts})
}

func (h *ContentHandler) BlogPost(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Post not found"})
	}
	p, err := h.Content.GetPost(id)
	if err != nil || !p.Active {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Post not found"})
	}
	return render(c, "blog_post", fiber.Map{"Post": p})
}

func (h *ContentHandler) Contact(c *fiber.Ctx) error {
	return render(c, "contact", fiber.Map{})
}
