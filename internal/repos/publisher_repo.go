package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"libroteca/internal/domain"
)

type PublisherRepo struct{ db *sqlx.DB }

func NewPublisherRepo(db *sqlx.DB) *PublisherRepo { return &PublisherRepo{db: db} }

const publisherColumns = `
  id, name, COALESCE(address,'') AS address, COALESCE(phone,'') AS phone,
  COALESCE(email,'') AS email, COALESCE(website,'') AS website, COALESCE(country,'') AS country,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *PublisherRepo) List() ([]domain.Publisher, error) {
	var out []domain.Publisher
	err := r.db.Select(&out, `SELECT `+publisherColumns+` FROM publishers ORDER BY name`)
	return out, err
}

func (r *PublisherRepo) Get(id string) (domain.Publisher, error) {
	var p domain.Publisher
	err := r.db.Get(&p, `SELECT `+publisherColumns+` FROM publishers WHERE id = ?`, id)
	return p, err
}

func (r *PublisherRepo) Create(p domain.Publisher) error {
	_, err := r.db.Exec(`
	  INSERT INTO publishers(id, name, address, phone, email, website, country)
	  VALUES(?,?,?,?,?,?,?)
	`, p.ID, p.Name, p.Address, p.Phone, p.Email, p.Website, p.Country)
	return err
}

func (r *PublisherRepo) Update(p domain.Publisher) error {
	res, err := r.db.Exec(`
	  UPDATE publishers
	  SET name=?, address=?, phone=?, email=?, website=?, country=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, p.Name, p.Address, p.Phone, p.Email, p.Website, p.Country, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete fails while books reference the publisher (ON DELETE RESTRICT).
func (r *PublisherRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM publishers WHERE id = ?`, id)
	return err
}
