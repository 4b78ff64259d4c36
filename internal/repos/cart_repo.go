package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// DB exposes the bound handle for non-transactional calls to the
// Ext-taking methods below.
func (r *CartRepo) DB() *sqlx.DB { return r.db }

// CartItemRow is a cart line joined with its book for display and checkout.
type CartItemRow struct {
	ID       string          `db:"id"`
	BookID   string          `db:"book_id"`
	Title    string          `db:"title"`
	Qty      int             `db:"qty"`
	Price    decimal.Decimal `db:"price"`
	Stock    int             `db:"stock"`
	Subtotal decimal.Decimal `db:"subtotal"`
}

func (r *CartRepo) Find(customerID, bookID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := r.db.Get(&l, `
	  SELECT id, customer_id, book_id, qty, added_at
	  FROM cart_items WHERE customer_id = ? AND book_id = ?
	`, customerID, bookID)
	return l, err
}

func (r *CartRepo) ByID(id, customerID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := r.db.Get(&l, `
	  SELECT id, customer_id, book_id, qty, added_at
	  FROM cart_items WHERE id = ? AND customer_id = ?
	`, id, customerID)
	return l, err
}

func (r *CartRepo) Insert(l domain.CartLine) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(id, customer_id, book_id, qty, added_at)
	  VALUES(?,?,?,?,CURRENT_TIMESTAMP)
	`, l.ID, l.CustomerID, l.BookID, l.Qty)
	return err
}

func (r *CartRepo) SetQty(id string, qty int) error {
	_, err := r.db.Exec(`UPDATE cart_items SET qty = ? WHERE id = ?`, qty, id)
	return err
}

func (r *CartRepo) Delete(id, customerID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ? AND customer_id = ?`, id, customerID)
	return err
}

// Items lists the customer's cart joined with current book price and stock.
// Prices here are live, not snapshots: checkout snapshots at transaction time.
func (r *CartRepo) Items(e sqlx.Ext, customerID string) ([]CartItemRow, error) {
	rows := []CartItemRow{}
	err := sqlx.Select(e, &rows, `
	  SELECT ci.id, ci.book_id, b.title, ci.qty, b.price, b.stock,
	         (ci.qty * b.price) AS subtotal
	  FROM cart_items ci JOIN books b ON b.id = ci.book_id
	  WHERE ci.customer_id = ?
	  ORDER BY ci.added_at
	`, customerID)
	return rows, err
}

func (r *CartRepo) Clear(e sqlx.Ext, customerID string) error {
	_, err := e.Exec(`DELETE FROM cart_items WHERE customer_id = ?`, customerID)
	return err
}
