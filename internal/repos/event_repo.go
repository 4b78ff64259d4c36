package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"libroteca/internal/domain"
)

type EventRepo struct{ db *sqlx.DB }

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `
  id, title, COALESCE(description,'') AS description, starts_at,
  COALESCE(location,'') AS location, category, capacity, price, active,
  COALESCE(image_path,'') AS image_path`

// ListUpcoming returns active events ordered by date.
func (r *EventRepo) ListUpcoming() ([]domain.Event, error) {
	var out []domain.Event
	err := r.db.Select(&out, `
	  SELECT `+eventColumns+` FROM events
	  WHERE active = 1 AND datetime(starts_at) >= datetime('now')
	  ORDER BY datetime(starts_at)
	`)
	return out, err
}

func (r *EventRepo) ListAll() ([]domain.Event, error) {
	var out []domain.Event
	err := r.db.Select(&out, `SELECT `+eventColumns+` FROM events ORDER BY datetime(starts_at)`)
	return out, err
}

func (r *EventRepo) Get(id string) (domain.Event, error) {
	var e domain.Event
	err := r.db.Get(&e, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return e, err
}

func (r *EventRepo) Create(e domain.Event) error {
	_, err := r.db.Exec(`
	  INSERT INTO events(id, title, description, starts_at, location, category, capacity, price, active, image_path)
	  VALUES(?,?,?,?,?,?,?,?,?,?)
	`, e.ID, e.Title, e.Description, e.StartsAt, e.Location, e.Category, e.Capacity, e.Price, e.Active, e.ImagePath)
	return err
}

func (r *EventRepo) Update(e domain.Event) error {
	res, err := r.db.Exec(`
	  UPDATE events
	  SET title=?, description=?, starts_at=?, location=?, category=?, capacity=?, price=?, active=?, image_path=?
	  WHERE id=?
	`, e.Title, e.Description, e.StartsAt, e.Location, e.Category, e.Capacity, e.Price, e.Active, e.ImagePath, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EventRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}
