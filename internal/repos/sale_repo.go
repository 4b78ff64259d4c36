package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// SaleSummary is the admin/history list row.
type SaleSummary struct {
	ID            string          `db:"id"`
	CustomerID    string          `db:"customer_id"`
	CustomerName  string          `db:"customer_name"`
	SoldAt        string          `db:"sold_at"`
	Total         decimal.Decimal `db:"total"`
	PaymentMethod string          `db:"payment_method"`
	Status        string          `db:"status"`
}

// Create inserts a sale header inside the caller's transaction.
func (r *SaleRepo) Create(e sqlx.Ext, s domain.Sale) error {
	_, err := e.Exec(`
	  INSERT INTO sales
	    (id, customer_id, sold_at, total, payment_method, status, discount_pct, amount_received, change_due)
	  VALUES
	    (?,  ?,           CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.CustomerID, s.Total, s.PaymentMethod, s.Status, s.DiscountPct, s.AmountReceived, s.ChangeDue)
	return err
}

// InsertLine inserts a single line item inside the caller's transaction.
func (r *SaleRepo) InsertLine(e sqlx.Ext, l domain.SaleLine) error {
	_, err := e.Exec(`
	  INSERT INTO sale_items(id, sale_id, book_id, title, qty, unit_price, tax_rate, subtotal)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.SaleID, l.BookID, l.Title, l.Qty, l.UnitPrice, l.TaxRate, l.Subtotal)
	return err
}

func (r *SaleRepo) Header(e sqlx.Ext, saleID string) (domain.Sale, error) {
	var s domain.Sale
	err := sqlx.Get(e, &s, `
	  SELECT id, customer_id, sold_at, total, payment_method, status, discount_pct, amount_received, change_due
	  FROM sales WHERE id = ?
	`, saleID)
	return s, err
}

func (r *SaleRepo) Lines(e sqlx.Ext, saleID string) ([]domain.SaleLine, error) {
	var out []domain.SaleLine
	err := sqlx.Select(e, &out, `
	  SELECT id, sale_id, book_id, title, qty, unit_price, tax_rate, subtotal
	  FROM sale_items WHERE sale_id = ?
	  ORDER BY title
	`, saleID)
	return out, err
}

// Get loads a sale with its lines.
func (r *SaleRepo) Get(saleID string) (domain.Sale, error) {
	s, err := r.Header(r.db, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	s.Lines, err = r.Lines(r.db, saleID)
	return s, err
}

func (r *SaleRepo) ListLatest(limit int) ([]SaleSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []SaleSummary
	err := r.db.Select(&out, `
	  SELECT s.id, s.customer_id, u.name AS customer_name, s.sold_at, s.total, s.payment_method, s.status
	  FROM sales s JOIN users u ON u.id = s.customer_id
	  ORDER BY datetime(s.sold_at) DESC
	  LIMIT ?
	`, limit)
	return out, err
}

func (r *SaleRepo) ListByCustomer(customerID string) ([]SaleSummary, error) {
	var out []SaleSummary
	err := r.db.Select(&out, `
	  SELECT s.id, s.customer_id, u.name AS customer_name, s.sold_at, s.total, s.payment_method, s.status
	  FROM sales s JOIN users u ON u.id = s.customer_id
	  WHERE s.customer_id = ?
	  ORDER BY datetime(s.sold_at) DESC
	`, customerID)
	return out, err
}

// UpdateStatus sets the status inside the caller's transaction.
// CANCELLED is terminal: a cancelled sale had its stock restored, so
// reopening it would let a later cancellation restore the same units
// again. The guard makes such an update hit no rows and reports
// sql.ErrNoRows to the caller.
func (r *SaleRepo) UpdateStatus(e sqlx.Ext, saleID, status string) error {
	res, err := e.Exec(`
	  UPDATE sales SET status = ? WHERE id = ? AND status != ?
	`, status, saleID, domain.SaleCancelled)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
