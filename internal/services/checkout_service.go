package services

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
)

// CheckoutService converts a customer's cart into a finalized sale and
// cancels completed sales. Both operations run in a single database
// transaction: header, line items, stock movements and cart clearing
// commit together or not at all.
type CheckoutService struct {
	DB    *sqlx.DB
	Carts *repos.CartRepo
	Books *repos.BookRepo
	Sales *repos.SaleRepo

	validate *validator.Validate
}

func NewCheckoutService(db *sqlx.DB, carts *repos.CartRepo, books *repos.BookRepo, sales *repos.SaleRepo) *CheckoutService {
	return &CheckoutService{
		DB:       db,
		Carts:    carts,
		Books:    books,
		Sales:    sales,
		validate: validator.New(),
	}
}

// CheckoutInput is validated once at the boundary before any state changes.
type CheckoutInput struct {
	PaymentMethod  string          `validate:"required,oneof=CASH CARD TRANSFER"`
	AmountReceived decimal.Decimal `validate:"-"`
}

// ProcessCheckout turns the customer's cart into a COMPLETED sale.
//
// Stock is re-checked at transaction time: the guarded decrement
// (stock >= qty) makes the second of two competing checkouts for the
// last unit fail with InsufficientStockError instead of overselling.
// Unit prices are snapshotted from the books inside the transaction,
// never from the cart.
func (s *CheckoutService) ProcessCheckout(customerID string, in CheckoutInput) (domain.Sale, error) {
	if customerID == "" {
		return domain.Sale{}, &domain.ValidationError{Reason: "missing customer"}
	}
	if err := s.validate.Struct(in); err != nil {
		return domain.Sale{}, &domain.ValidationError{Reason: "payment method must be CASH, CARD or TRANSFER"}
	}
	if in.AmountReceived.IsNegative() {
		return domain.Sale{}, &domain.ValidationError{Reason: "amount received cannot be negative"}
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Sale{}, err
	}
	defer func() { _ = tx.Rollback() }()

	items, err := s.Carts.Items(tx, customerID)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(items) == 0 {
		return domain.Sale{}, domain.ErrEmptyCart
	}

	// Stock precondition, re-read inside the transaction.
	for _, it := range items {
		if it.Qty > it.Stock {
			return domain.Sale{}, &domain.InsufficientStockError{
				BookID: it.BookID, Title: it.Title, Requested: it.Qty, Available: it.Stock,
			}
		}
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	tax := subtotal.Mul(domain.DefaultTaxRate).Round(2)
	total := subtotal.Add(tax)

	received := in.AmountReceived
	change := decimal.Zero
	if in.PaymentMethod == domain.PaymentCash {
		if received.LessThan(total) {
			return domain.Sale{}, &domain.InsufficientPaymentError{Received: received, Required: total}
		}
		change = received.Sub(total)
	} else {
		// Card and transfer settle exactly: received is forced to the total.
		received = total
	}

	sale := domain.Sale{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		Total:          total,
		PaymentMethod:  in.PaymentMethod,
		Status:         domain.SaleCompleted,
		DiscountPct:    decimal.Zero,
		AmountReceived: received,
		ChangeDue:      change,
	}
	if err := s.Sales.Create(tx, sale); err != nil {
		return domain.Sale{}, err
	}

	for _, it := range items {
		line := domain.SaleLine{
			ID:        uuid.NewString(),
			SaleID:    sale.ID,
			BookID:    it.BookID,
			Title:     it.Title,
			Qty:       it.Qty,
			UnitPrice: it.Price,
			TaxRate:   domain.DefaultTaxRate,
			// Subtotal is always recomputed, never trusted from input.
			Subtotal: it.Price.Mul(decimal.NewFromInt(int64(it.Qty))),
		}
		if err := s.Sales.InsertLine(tx, line); err != nil {
			return domain.Sale{}, err
		}

		if err := s.Books.DecrementStock(tx, it.BookID, it.Qty); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// A competing checkout won the race since our read.
				b, gerr := s.Books.GetForUpdate(tx, it.BookID)
				if gerr != nil {
					return domain.Sale{}, &domain.InsufficientStockError{
						BookID: it.BookID, Title: it.Title, Requested: it.Qty,
					}
				}
				return domain.Sale{}, &domain.InsufficientStockError{
					BookID: it.BookID, Title: it.Title, Requested: it.Qty, Available: b.Stock,
				}
			}
			return domain.Sale{}, err
		}
		sale.Lines = append(sale.Lines, line)
	}

	if err := s.Carts.Clear(tx, customerID); err != nil {
		return domain.Sale{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

// CancelSale transitions a COMPLETED sale to CANCELLED and restores the
// stock its lines removed, atomically with the status change. Cancelling
// a sale in any other state fails with InvalidStateError, so a second
// cancel cannot double-restore stock.
func (s *CheckoutService) CancelSale(saleID string) (domain.Sale, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Sale{}, err
	}
	defer func() { _ = tx.Rollback() }()

	sale, err := s.Sales.Header(tx, saleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, domain.ErrNotFound
		}
		return domain.Sale{}, err
	}
	if sale.Status != domain.SaleCompleted {
		return domain.Sale{}, &domain.InvalidStateError{SaleID: saleID, Status: sale.Status}
	}

	lines, err := s.Sales.Lines(tx, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	for _, l := range lines {
		if err := s.Books.RestoreStock(tx, l.BookID, l.Qty); err != nil {
			return domain.Sale{}, err
		}
	}

	if err := s.Sales.UpdateStatus(tx, saleID, domain.SaleCancelled); err != nil {
		return domain.Sale{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Sale{}, err
	}

	sale.Status = domain.SaleCancelled
	sale.Lines = lines
	return sale, nil
}
