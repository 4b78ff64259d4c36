package repos

import (
	"github.com/jmoiron/sqlx"

	"libroteca/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, name, password_hash, role,
  COALESCE(phone,'') AS phone, COALESCE(address,'') AS address`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id, u.email, u.name, u.password_hash, u.role,
             COALESCE(u.phone,'') AS phone, COALESCE(u.address,'') AS address
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// ListCustomers returns non-admin users for the back office.
func (r *UserRepo) ListCustomers() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userColumns+` FROM users WHERE role != 'ADMIN' ORDER BY email`)
	return out, err
}

// UpdateProfile saves the customer-editable fields.
func (r *UserRepo) UpdateProfile(id, name, phone, address string) error {
	_, err := r.DB.Exec(`
	  UPDATE users SET name=?, phone=?, address=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, phone, address, id)
	return err
}
