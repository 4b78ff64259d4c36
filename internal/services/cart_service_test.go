package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func newCart(db *sqlx.DB) *services.CartService {
	return services.NewCartService(repos.NewCartRepo(db), repos.NewBookRepo(db))
}

func TestCartAddClampsNewLineToStock(t *testing.T) {
	db := testDB(t)
	insertBook(t, db, "b-few", "80.00", 3)
	svc := newCart(db)

	if err := svc.Add("u-maria", "b-few", 10); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.View("u-maria")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 || cv.Items[0].Qty != 3 {
		t.Fatalf("want one line with qty 3, got %+v", cv.Items)
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	db := testDB(t)
	svc := newCart(db)

	// Seeded with zero stock.
	err := svc.Add("u-maria", "b-rebelion-granja", 1)
	var oos *domain.OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("want OutOfStockError, got %v", err)
	}
	if cartCount(t, db, "u-maria") != 0 {
		t.Fatal("cart must stay empty")
	}
}

func TestCartAddUnknownBook(t *testing.T) {
	db := testDB(t)
	if err := newCart(db).Add("u-maria", "no-such-book", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCartAddIncrementsUpToStock(t *testing.T) {
	db := testDB(t)
	insertBook(t, db, "b-two", "80.00", 2)
	svc := newCart(db)

	if err := svc.Add("u-maria", "b-two", 1); err != nil {
		t.Fatal(err)
	}
	// Second add bumps the existing line by one.
	if err := svc.Add("u-maria", "b-two", 1); err != nil {
		t.Fatal(err)
	}
	// At the cap: reported, not fatal, and quantity unchanged.
	if err := svc.Add("u-maria", "b-two", 1); !errors.Is(err, domain.ErrStockLimit) {
		t.Fatalf("want ErrStockLimit, got %v", err)
	}
	cv, err := svc.View("u-maria")
	if err != nil {
		t.Fatal(err)
	}
	if cv.Items[0].Qty != 2 {
		t.Fatalf("want qty 2, got %d", cv.Items[0].Qty)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	db := testDB(t)
	insertBook(t, db, "b-five", "80.00", 5)
	svc := newCart(db)

	if err := svc.Add("u-maria", "b-five", 2); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View("u-maria")
	itemID := cv.Items[0].ID

	// Over stock is rejected with the shortfall.
	err := svc.UpdateQuantity("u-maria", itemID, 9)
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ins.Available != 5 {
		t.Fatalf("want available 5, got %d", ins.Available)
	}

	if err := svc.UpdateQuantity("u-maria", itemID, 4); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View("u-maria")
	if cv.Items[0].Qty != 4 {
		t.Fatalf("want qty 4, got %d", cv.Items[0].Qty)
	}

	// Zero removes the line.
	if err := svc.UpdateQuantity("u-maria", itemID, 0); err != nil {
		t.Fatal(err)
	}
	if cartCount(t, db, "u-maria") != 0 {
		t.Fatal("line should be gone")
	}

	if err := svc.UpdateQuantity("u-maria", itemID, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCartViewTotals(t *testing.T) {
	db := testDB(t)
	insertBook(t, db, "b-hundred", "100.00", 10)
	insertBook(t, db, "b-fifty", "50.00", 10)
	svc := newCart(db)

	if err := svc.Add("u-maria", "b-hundred", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add("u-maria", "b-fifty", 1); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.View("u-maria")
	if err != nil {
		t.Fatal(err)
	}
	if !cv.Subtotal.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("subtotal = %s", cv.Subtotal)
	}
	if !cv.Tax.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("tax = %s", cv.Tax)
	}
	if !cv.Total.Equal(decimal.RequireFromString("290.00")) {
		t.Fatalf("total = %s", cv.Total)
	}
}
