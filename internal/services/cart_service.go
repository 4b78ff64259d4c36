package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Books *repos.BookRepo
}

func NewCartService(carts *repos.CartRepo, books *repos.BookRepo) *CartService {
	return &CartService{Carts: carts, Books: books}
}

// Add puts a book in the customer's cart. A new line gets
// min(requestedQty, stock); re-adding an existing line increments it by
// one up to the book's stock, past which ErrStockLimit is reported with
// no state change.
func (s *CartService) Add(customerID, bookID string, requestedQty int) error {
	if requestedQty < 1 {
		requestedQty = 1
	}
	book, err := s.Books.Get(bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if book.Stock <= 0 {
		return &domain.OutOfStockError{BookID: book.ID, Title: book.Title}
	}

	line, err := s.Carts.Find(customerID, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		qty := requestedQty
		if qty > book.Stock {
			qty = book.Stock
		}
		return s.Carts.Insert(domain.CartLine{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			BookID:     bookID,
			Qty:        qty,
		})
	}
	if err != nil {
		return err
	}

	if line.Qty >= book.Stock {
		return domain.ErrStockLimit
	}
	return s.Carts.SetQty(line.ID, line.Qty+1)
}

// UpdateQuantity sets a line's quantity in place. Zero or negative
// deletes the line; anything above the book's stock is rejected.
func (s *CartService) UpdateQuantity(customerID, itemID string, newQty int) error {
	line, err := s.Carts.ByID(itemID, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if newQty <= 0 {
		return s.Carts.Delete(line.ID, customerID)
	}

	book, err := s.Books.Get(line.BookID)
	if err != nil {
		return err
	}
	if newQty > book.Stock {
		return &domain.InsufficientStockError{
			BookID: book.ID, Title: book.Title, Requested: newQty, Available: book.Stock,
		}
	}
	return s.Carts.SetQty(line.ID, newQty)
}

func (s *CartService) Remove(customerID, itemID string) error {
	return s.Carts.Delete(itemID, customerID)
}

func (s *CartService) Clear(customerID string) error {
	return s.Carts.Clear(s.Carts.DB(), customerID)
}

type CartView struct {
	Items    []repos.CartItemRow
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// View lists the cart with the same subtotal/tax/total math checkout uses.
func (s *CartService) View(customerID string) (CartView, error) {
	items, err := s.Carts.Items(s.Carts.DB(), customerID)
	if err != nil {
		return CartView{}, err
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	tax := subtotal.Mul(domain.DefaultTaxRate).Round(2)
	return CartView{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}
