package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"libroteca/internal/domain"
)

type AuthorRepo struct{ db *sqlx.DB }

func NewAuthorRepo(db *sqlx.DB) *AuthorRepo { return &AuthorRepo{db: db} }

const authorColumns = `
  id, first_name, last_name, COALESCE(nationality,'') AS nationality,
  COALESCE(born_on,'') AS born_on, COALESCE(bio,'') AS bio, COALESCE(website,'') AS website,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *AuthorRepo) List() ([]domain.Author, error) {
	var out []domain.Author
	err := r.db.Select(&out, `SELECT `+authorColumns+` FROM authors ORDER BY last_name, first_name`)
	return out, err
}

func (r *AuthorRepo) Get(id string) (domain.Author, error) {
	var a domain.Author
	err := r.db.Get(&a, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)
	return a, err
}

func (r *AuthorRepo) Create(a domain.Author) error {
	_, err := r.db.Exec(`
	  INSERT INTO authors(id, first_name, last_name, nationality, born_on, bio, website)
	  VALUES(?,?,?,?,?,?,?)
	`, a.ID, a.FirstName, a.LastName, a.Nationality, a.BornOn, a.Bio, a.Website)
	return err
}

func (r *AuthorRepo) Update(a domain.Author) error {
	res, err := r.db.Exec(`
	  UPDATE authors
	  SET first_name=?, last_name=?, nationality=?, born_on=?, bio=?, website=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, a.FirstName, a.LastName, a.Nationality, a.BornOn, a.Bio, a.Website, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete fails while books reference the author (ON DELETE RESTRICT).
func (r *AuthorRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM authors WHERE id = ?`, id)
	return err
}
