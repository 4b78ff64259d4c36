package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"libroteca/internal/domain"
	applog "libroteca/internal/log"
	"libroteca/internal/services"
)

type ProfileHandler struct {
	Auth *services.AuthService
}

func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	return render(c, "profile", fiber.Map{})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)

	err := h.Auth.UpdateProfile(u.ID,
		c.FormValue("name"), c.FormValue("phone"), c.FormValue("address"))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{
				"User": u, "Notice": verr.Error(), "CSRFToken": c.Cookies("csrf_"),
			})
		}
		applog.Error(c, "profile.update.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not save your profile"})
	}

	applog.Audit(c, "profile.update", map[string]any{"user_id": u.ID})
	return c.Redirect("/profile")
}
