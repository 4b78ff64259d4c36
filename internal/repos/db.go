package repos

import (
	"errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"libroteca/internal/migrations"
)

// OpenDB opens the sqlite database, applies pending migrations and
// seeds baseline data when the catalog is empty.
func OpenDB(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one pooled connection keeps the
	// pragma below in effect and serializes concurrent checkouts.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := migrateUp(db); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
		// Ensure users exist (idempotent; safe to run every start)
		if err := seedUsers(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	drv, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM books`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo authors/publishers/books")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO authors(id,first_name,last_name,nationality,born_on,bio,website) VALUES
	  ('a-ggm','Gabriel','García Márquez','Colombian','1927-03-06','Nobel laureate, father of magical realism.',''),
	  ('a-orwell','George','Orwell','British','1903-06-25','Essayist and novelist.',''),
	  ('a-allende','Isabel','Allende','Chilean','1942-08-02','Bestselling Latin American novelist.','https://isabelallende.com')`)

	tx.MustExec(`INSERT INTO publishers(id,name,address,phone,email,country) VALUES
	  ('p-sudamericana','Editorial Sudamericana','Humberto 531, Buenos Aires','+54 11 4000-0000','contacto@sudamericana.test','Argentina'),
	  ('p-secker','Secker and Warburg','London','+44 20 7000 0000','info@secker.test','United Kingdom')`)

	tx.MustExec(`INSERT INTO books(id,title,author_id,publisher_id,isbn,published_year,genre,price,stock,description) VALUES
	  ('b-cien-anios','Cien años de soledad','a-ggm','p-sudamericana','978-0-06-088328-7',1967,'FIC',349.00,12,'The Buendía family saga.'),
	  ('b-1984','1984','a-orwell','p-secker','978-0-452-28423-4',1949,'CIE',199.50,8,'Dystopian classic.'),
	  ('b-casa-espiritus','La casa de los espíritus','a-allende','p-sudamericana','978-1-5011-1701-5',1982,'FIC',289.00,5,'The Trueba family across generations.'),
	  ('b-rebelion-granja','Rebelión en la granja','a-orwell','p-secker','978-0-452-28424-1',1945,'FAN',149.00,0,'Animal Farm, Spanish edition.')`)

	tx.MustExec(`INSERT INTO events(id,title,description,starts_at,location,category,capacity,price) VALUES
	  ('e-club-marzo','Club de lectura: realismo mágico','Monthly reading circle.','2026-09-12T18:00:00Z','Sala principal','BOOK_CLUB',30,0),
	  ('e-firma-allende','Firma de libros: Isabel Allende','Signing session.','2026-10-02T17:00:00Z','Planta baja','SIGNING',100,0)`)

	return tx.Commit()
}

// seedUsers ensures one customer and one admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-maria", "maria@libroteca.test", "María", "USER", "Passw0rd!"),
		mk("u-diego", "diego@libroteca.test", "Diego", "USER", "Passw0rd!"),
		mk("u-admin", "admin@libroteca.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
