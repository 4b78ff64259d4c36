package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"libroteca/internal/domain"
	applog "libroteca/internal/log"
	"libroteca/internal/services"
	"libroteca/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "cart.view", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	bookID, ok := validate.ID(c.FormValue("bookId"))
	if !ok {
		return c.Status(400).SendString("missing bookId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	err := h.Cart.Add(u.ID, bookID, qty)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStockLimit):
		// Cap reached is non-fatal: show the cart with a notice.
		cv, verr := h.Cart.View(u.ID)
		if verr != nil {
			return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
		}
		return render(c, "cart", fiber.Map{"Cart": cv, "Notice": "Stock limit reached for that title"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This book is no longer available"})
	default:
		var oos *domain.OutOfStockError
		if errors.As(err, &oos) {
			applog.Info(c, "cart.add.out_of_stock", map[string]any{"book_id": bookID})
			return c.Status(fiber.StatusConflict).Render("notfound", fiber.Map{"Message": oos.Error()})
		}
		applog.Error(c, "cart.add", err, map[string]any{"book_id": bookID})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.FormValue("itemId"))
	if !ok {
		return c.Status(400).SendString("missing itemId")
	}
	qty, err := strconv.Atoi(c.FormValue("qty"))
	if err != nil {
		return c.Status(400).SendString("invalid quantity")
	}

	if err := h.Cart.UpdateQuantity(u.ID, itemID, qty); err != nil {
		var ins *domain.InsufficientStockError
		if errors.As(err, &ins) {
			cv, verr := h.Cart.View(u.ID)
			if verr != nil {
				return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
			}
			return c.Status(fiber.StatusConflict).Render("cart", fiber.Map{"Cart": cv, "Notice": ins.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(404).Render("notfound", fiber.Map{"Message": "That item is not in your cart"})
		}
		applog.Error(c, "cart.update", err, map[string]any{"item_id": itemID})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.FormValue("itemId"))
	if !ok {
		return c.Status(400).SendString("missing itemId")
	}
	if err := h.Cart.Remove(u.ID, itemID); err != nil {
		applog.Error(c, "cart.remove", err, map[string]any{"item_id": itemID})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Cart.Clear(u.ID); err != nil {
		applog.Error(c, "cart.clear", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	return c.Redirect("/cart")
}
