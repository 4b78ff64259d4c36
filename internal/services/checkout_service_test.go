package services_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/matryer/is"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertBook(t *testing.T, db *sqlx.DB, id, price string, stock int) {
	t.Helper()
	_, err := db.Exec(`
	  INSERT INTO books(id,title,author_id,publisher_id,isbn,published_year,genre,price,stock)
	  VALUES(?,?,'a-ggm','p-sudamericana',?,2000,'FIC',?,?)
	`, id, "Test book "+id, "isbn-"+id, price, stock)
	if err != nil {
		t.Fatal(err)
	}
}

func addCartLine(t *testing.T, db *sqlx.DB, customerID, bookID string, qty int) {
	t.Helper()
	err := repos.NewCartRepo(db).Insert(domain.CartLine{
		ID: uuid.NewString(), CustomerID: customerID, BookID: bookID, Qty: qty,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func bookStock(t *testing.T, db *sqlx.DB, id string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT stock FROM books WHERE id=?`, id); err != nil {
		t.Fatal(err)
	}
	return n
}

func cartCount(t *testing.T, db *sqlx.DB, customerID string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM cart_items WHERE customer_id=?`, customerID); err != nil {
		t.Fatal(err)
	}
	return n
}

func newCheckout(db *sqlx.DB) *services.CheckoutService {
	return services.NewCheckoutService(db,
		repos.NewCartRepo(db), repos.NewBookRepo(db), repos.NewSaleRepo(db))
}

func TestProcessCheckoutCashReceipt(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 5)
	addCartLine(t, db, "u-maria", "b-hundred", 2)

	svc := newCheckout(db)
	sale, err := svc.ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod:  domain.PaymentCash,
		AmountReceived: decimal.RequireFromString("250.00"),
	})
	is.NoErr(err)

	// 200 subtotal, 16% IVA
	is.True(sale.Total.Equal(decimal.RequireFromString("232.00")))
	is.True(sale.ChangeDue.Equal(decimal.RequireFromString("18.00")))
	is.True(sale.AmountReceived.Equal(decimal.RequireFromString("250.00")))
	is.Equal(sale.Status, domain.SaleCompleted)
	is.Equal(len(sale.Lines), 1)
	is.Equal(sale.Lines[0].Qty, 2)
	is.True(sale.Lines[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	is.True(sale.Lines[0].Subtotal.Equal(decimal.RequireFromString("200.00")))

	is.Equal(bookStock(t, db, "b-hundred"), 3)
	is.Equal(cartCount(t, db, "u-maria"), 0)

	stored, err := repos.NewSaleRepo(db).Get(sale.ID)
	is.NoErr(err)
	is.Equal(stored.Status, domain.SaleCompleted)
	is.Equal(len(stored.Lines), 1)
}

func TestProcessCheckoutEmptyCart(t *testing.T) {
	is := is.New(t)
	db := testDB(t)

	_, err := newCheckout(db).ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod: domain.PaymentCard,
	})
	is.True(errors.Is(err, domain.ErrEmptyCart))
}

func TestProcessCheckoutRejectsBadInput(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	svc := newCheckout(db)

	var verr *domain.ValidationError
	_, err := svc.ProcessCheckout("u-maria", services.CheckoutInput{PaymentMethod: "BITCOIN"})
	is.True(errors.As(err, &verr))

	_, err = svc.ProcessCheckout("", services.CheckoutInput{PaymentMethod: domain.PaymentCash})
	is.True(errors.As(err, &verr))

	_, err = svc.ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod:  domain.PaymentCash,
		AmountReceived: decimal.RequireFromString("-1"),
	})
	is.True(errors.As(err, &verr))
}

func TestProcessCheckoutCashUnderpay(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 5)
	addCartLine(t, db, "u-maria", "b-hundred", 2)

	_, err := newCheckout(db).ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod:  domain.PaymentCash,
		AmountReceived: decimal.RequireFromString("200.00"), // total is 232.00
	})
	var payErr *domain.InsufficientPaymentError
	is.True(errors.As(err, &payErr))
	is.True(payErr.Required.Equal(decimal.RequireFromString("232.00")))

	// Nothing committed
	is.Equal(bookStock(t, db, "b-hundred"), 5)
	is.Equal(cartCount(t, db, "u-maria"), 1)
	var sales int
	is.NoErr(db.Get(&sales, `SELECT COUNT(*) FROM sales`))
	is.Equal(sales, 0)
}

func TestProcessCheckoutStockShrankSinceAdd(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-last", "50.00", 2)
	addCartLine(t, db, "u-maria", "b-last", 2)

	// Another purchase drained the shelf after the cart was filled.
	if _, err := db.Exec(`UPDATE books SET stock=1 WHERE id='b-last'`); err != nil {
		t.Fatal(err)
	}

	_, err := newCheckout(db).ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod: domain.PaymentCard,
	})
	var stockErr *domain.InsufficientStockError
	is.True(errors.As(err, &stockErr))
	is.Equal(stockErr.Requested, 2)
	is.Equal(stockErr.Available, 1)

	is.Equal(bookStock(t, db, "b-last"), 1)
	is.Equal(cartCount(t, db, "u-maria"), 1)
}

func TestProcessCheckoutCardSettlesExactly(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 5)
	addCartLine(t, db, "u-maria", "b-hundred", 1)

	sale, err := newCheckout(db).ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod: domain.PaymentCard, // no amount tendered
	})
	is.NoErr(err)
	is.True(sale.AmountReceived.Equal(sale.Total))
	is.True(sale.ChangeDue.IsZero())
}

func TestCancelSaleRestoresStockOnce(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 5)
	addCartLine(t, db, "u-maria", "b-hundred", 3)

	svc := newCheckout(db)
	sale, err := svc.ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod: domain.PaymentTransfer,
	})
	is.NoErr(err)
	is.Equal(bookStock(t, db, "b-hundred"), 2)

	cancelled, err := svc.CancelSale(sale.ID)
	is.NoErr(err)
	is.Equal(cancelled.Status, domain.SaleCancelled)
	is.Equal(bookStock(t, db, "b-hundred"), 5)

	// A second cancel must not restore stock again.
	_, err = svc.CancelSale(sale.ID)
	var stateErr *domain.InvalidStateError
	is.True(errors.As(err, &stateErr))
	is.Equal(stateErr.Status, domain.SaleCancelled)
	is.Equal(bookStock(t, db, "b-hundred"), 5)
}

func TestCancelledSaleIsTerminal(t *testing.T) {
	is := is.New(t)
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 5)
	addCartLine(t, db, "u-maria", "b-hundred", 3)

	svc := newCheckout(db)
	sale, err := svc.ProcessCheckout("u-maria", services.CheckoutInput{
		PaymentMethod: domain.PaymentCard,
	})
	is.NoErr(err)
	_, err = svc.CancelSale(sale.ID)
	is.NoErr(err)
	is.Equal(bookStock(t, db, "b-hundred"), 5)

	// Flipping the cancelled sale back to COMPLETED must hit no rows;
	// otherwise a repeat cancel would restore the same three units again.
	err = repos.NewSaleRepo(db).UpdateStatus(db, sale.ID, domain.SaleCompleted)
	is.True(errors.Is(err, sql.ErrNoRows))

	stored, err := repos.NewSaleRepo(db).Get(sale.ID)
	is.NoErr(err)
	is.Equal(stored.Status, domain.SaleCancelled)

	_, err = svc.CancelSale(sale.ID)
	var stateErr *domain.InvalidStateError
	is.True(errors.As(err, &stateErr))
	is.Equal(bookStock(t, db, "b-hundred"), 5)
}

func TestCancelSaleUnknown(t *testing.T) {
	is := is.New(t)
	db := testDB(t)

	_, err := newCheckout(db).CancelSale("no-such-sale")
	is.True(errors.Is(err, domain.ErrNotFound))
}
