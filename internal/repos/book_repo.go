package repos

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libroteca/internal/domain"
)

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookColumns = `
  id, title, author_id, publisher_id, isbn, published_year, genre, price, stock,
  COALESCE(description,'') AS description, COALESCE(cover_path,'') AS cover_path,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *BookRepo) Get(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	return b, err
}

// GetForUpdate reads a book inside the caller's transaction.
func (r *BookRepo) GetForUpdate(e sqlx.Ext, id string) (domain.Book, error) {
	var b domain.Book
	err := sqlx.Get(e, &b, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	return b, err
}

// BookListing joins author and publisher names for catalog pages.
type BookListing struct {
	domain.Book
	AuthorName    string `db:"author_name"`
	PublisherName string `db:"publisher_name"`
}

func (r *BookRepo) List(genre string, inStockOnly bool, limit, offset int) ([]BookListing, error) {
	where := `1=1`
	args := []any{}
	if genre != "" {
		where += ` AND b.genre = ?`
		args = append(args, genre)
	}
	if inStockOnly {
		where += ` AND b.stock > 0`
	}
	args = append(args, limit, offset)

	var out []BookListing
	err := r.db.Select(&out, `
	  SELECT b.id, b.title, b.author_id, b.publisher_id, b.isbn, b.published_year,
	         b.genre, b.price, b.stock,
	         COALESCE(b.description,'') AS description, COALESCE(b.cover_path,'') AS cover_path,
	         b.created_at, COALESCE(b.updated_at,'') AS updated_at,
	         (a.first_name || ' ' || a.last_name) AS author_name,
	         p.name AS publisher_name
	  FROM books b
	  JOIN authors a ON a.id = b.author_id
	  JOIN publishers p ON p.id = b.publisher_id
	  WHERE `+where+`
	  ORDER BY b.title
	  LIMIT ? OFFSET ?
	`, args...)
	return out, err
}

func (r *BookRepo) ListOutOfStock(limit, offset int) ([]BookListing, error) {
	var out []BookListing
	err := r.db.Select(&out, `
	  SELECT b.id, b.title, b.author_id, b.publisher_id, b.isbn, b.published_year,
	         b.genre, b.price, b.stock,
	         COALESCE(b.description,'') AS description, COALESCE(b.cover_path,'') AS cover_path,
	         b.created_at, COALESCE(b.updated_at,'') AS updated_at,
	         (a.first_name || ' ' || a.last_name) AS author_name,
	         p.name AS publisher_name
	  FROM books b
	  JOIN authors a ON a.id = b.author_id
	  JOIN publishers p ON p.id = b.publisher_id
	  WHERE b.stock = 0
	  ORDER BY b.title
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

func (r *BookRepo) Detail(id string) (BookListing, error) {
	var b BookListing
	err := r.db.Get(&b, `
	  SELECT b.id, b.title, b.author_id, b.publisher_id, b.isbn, b.published_year,
	         b.genre, b.price, b.stock,
	         COALESCE(b.description,'') AS description, COALESCE(b.cover_path,'') AS cover_path,
	         b.created_at, COALESCE(b.updated_at,'') AS updated_at,
	         (a.first_name || ' ' || a.last_name) AS author_name,
	         p.name AS publisher_name
	  FROM books b
	  JOIN authors a ON a.id = b.author_id
	  JOIN publishers p ON p.id = b.publisher_id
	  WHERE b.id = ?
	`, id)
	return b, err
}

func (r *BookRepo) Create(b domain.Book) error {
	_, err := r.db.Exec(`
	  INSERT INTO books(id,title,author_id,publisher_id,isbn,published_year,genre,price,stock,description,cover_path)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, b.ID, b.Title, b.AuthorID, b.PublisherID, b.ISBN, b.PublishedYear, b.Genre, b.Price, b.Stock, b.Description, b.CoverPath)
	return err
}

func (r *BookRepo) Update(b domain.Book) error {
	res, err := r.db.Exec(`
	  UPDATE books
	  SET title=?, author_id=?, publisher_id=?, isbn=?, published_year=?, genre=?,
	      price=?, stock=?, description=?, cover_path=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, b.Title, b.AuthorID, b.PublisherID, b.ISBN, b.PublishedYear, b.Genre, b.Price, b.Stock, b.Description, b.CoverPath, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete fails while historical sale lines reference the book
// (sale_items.book_id is ON DELETE RESTRICT).
func (r *BookRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	return err
}

// DecrementStock subtracts "by" units if enough stock exists, inside the
// caller's transaction. Returns sql.ErrNoRows when the guard fails so the
// caller can report requested vs. available.
func (r *BookRepo) DecrementStock(e sqlx.Ext, bookID string, by int) error {
	res, err := e.Exec(`
		UPDATE books
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, by, bookID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RestoreStock adds units back on sale cancellation.
func (r *BookRepo) RestoreStock(e sqlx.Ext, bookID string, by int) error {
	res, err := e.Exec(`
		UPDATE books
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, by, bookID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("restore stock: book %s not found", bookID)
	}
	return nil
}

// InventoryValue returns total stock units and their sale value (Σ price × stock).
func (r *BookRepo) InventoryValue() (int, decimal.Decimal, error) {
	var row struct {
		Units int             `db:"units"`
		Value decimal.Decimal `db:"value"`
	}
	err := r.db.Get(&row, `
	  SELECT COALESCE(SUM(stock),0) AS units, COALESCE(SUM(price*stock),0) AS value FROM books
	`)
	return row.Units, row.Value, err
}
