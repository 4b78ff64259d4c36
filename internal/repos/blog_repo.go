package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"libroteca/internal/domain"
)

type BlogRepo struct{ db *sqlx.DB }

func NewBlogRepo(db *sqlx.DB) *BlogRepo { return &BlogRepo{db: db} }

const blogColumns = `
  id, title, content, COALESCE(summary,'') AS summary, author_id, category,
  active, published_at, COALESCE(image_path,'') AS image_path`

// ListActive returns published posts, newest first.
func (r *BlogRepo) ListActive() ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := r.db.Select(&out, `
	  SELECT `+blogColumns+` FROM blog_posts
	  WHERE active = 1
	  ORDER BY datetime(published_at) DESC
	`)
	return out, err
}

func (r *BlogRepo) ListAll() ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := r.db.Select(&out, `SELECT `+blogColumns+` FROM blog_posts ORDER BY datetime(published_at) DESC`)
	return out, err
}

func (r *BlogRepo) Get(id string) (domain.BlogPost, error) {
	var p domain.BlogPost
	err := r.db.Get(&p, `SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id)
	return p, err
}

func (r *BlogRepo) Create(p domain.BlogPost) error {
	_, err := r.db.Exec(`
	  INSERT INTO blog_posts(id, title, content, summary, author_id, category, active, published_at, image_path)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP,?)
	`, p.ID, p.Title, p.Content, p.Summary, p.AuthorID, p.Category, p.Active, p.ImagePath)
	return err
}

func (r *BlogRepo) Update(p domain.BlogPost) error {
	res, err := r.db.Exec(`
	  UPDATE blog_posts
	  SET title=?, content=?, summary=?, category=?, active=?, image_path=?
	  WHERE id=?
	`, p.Title, p.Content, p.Summary, p.Category, p.Active, p.ImagePath, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *BlogRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM blog_posts WHERE id = ?`, id)
	return err
}
