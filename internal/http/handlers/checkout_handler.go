package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"libroteca/internal/domain"
	applog "libroteca/internal/log"
	"libroteca/internal/repos"
	"libroteca/internal/services"
	"libroteca/internal/validate"
)

type CheckoutHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Sales    *repos.SaleRepo
}

func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

func (h *CheckoutHandler) Process(c *fiber.Ctx) error {
	u := currentUser(c)

	method, ok := validate.PaymentMethod(c.FormValue("payment_method"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "payment_method"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid payment method")
	}
	received, ok := validate.Money(c.FormValue("amount_received"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "amount_received"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid amount")
	}

	sale, err := h.Checkout.ProcessCheckout(u.ID, services.CheckoutInput{
		PaymentMethod:  method,
		AmountReceived: received,
	})
	if err != nil {
		return h.processFailure(c, u.ID, err)
	}

	applog.Audit(c, "checkout.complete", map[string]any{
		"sale_id": sale.ID,
		"total":   sale.Total.StringFixed(2),
		"method":  sale.PaymentMethod,
	})
	return c.Redirect("/sale/" + sale.ID)
}

// processFailure maps the checkout error taxonomy onto responses. Business
// precondition failures re-render the cart with the specific reason;
// anything unexpected logs the error and shows a generic message.
func (h *CheckoutHandler) processFailure(c *fiber.Ctx, customerID string, err error) error {
	var (
		stockErr   *domain.InsufficientStockError
		payErr     *domain.InsufficientPaymentError
		inputErr   *domain.ValidationError
		noticeText string
	)
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		noticeText = "Your cart is empty"
	case errors.As(err, &stockErr):
		noticeText = stockErr.Error()
	case errors.As(err, &payErr):
		noticeText = payErr.Error()
	case errors.As(err, &inputErr):
		applog.Security(c, "checkout.validation.fail", map[string]any{"error": inputErr.Error()})
		return c.Status(fiber.StatusBadRequest).SendString(inputErr.Error())
	default:
		applog.Error(c, "checkout.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not process your purchase. Please try again."})
	}

	applog.Info(c, "checkout.rejected", map[string]any{"reason": noticeText})
	cv, verr := h.Cart.View(customerID)
	if verr != nil {
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return c.Status(fiber.StatusConflict).Render("checkout", fiber.Map{"Cart": cv, "Notice": noticeText})
}

// SaleView shows a sale to its owner; admins may view any sale.
func (h *CheckoutHandler) SaleView(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Sale not found"})
	}

	sale, err := h.Sales.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Sale not found"})
	}
	if sale.CustomerID != u.ID && u.Role != "ADMIN" {
		applog.Security(c, "access.denied.sale", map[string]any{"sale_id": id})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Sale not found"})
	}
	return render(c, "sale", fiber.Map{"Sale": sale})
}

// Purchases lists the logged-in customer's sales.
func (h *CheckoutHandler) Purchases(c *fiber.Ctx) error {
	u := currentUser(c)
	sales, err := h.Sales.ListByCustomer(u.ID)
	if err != nil {
		applog.Error(c, "purchases.list", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your purchases"})
	}
	return render(c, "purchases", fiber.Map{"Sales": sales})
}
