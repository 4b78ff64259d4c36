package services_test

import (
	"errors"
	"testing"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func TestLoginRoundTrip(t *testing.T) {
	db := testDB(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	u, err := auth.Login("sid-1", "maria@libroteca.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u-maria" {
		t.Fatalf("got %+v", u)
	}

	got, err := auth.CurrentUser("sid-1")
	if err != nil || got == nil || got.ID != "u-maria" {
		t.Fatalf("session lookup: %v %+v", err, got)
	}

	if err := auth.Logout("sid-1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := auth.CurrentUser("sid-1"); got != nil {
		t.Fatal("session should be unbound after logout")
	}
}

func TestUpdateProfile(t *testing.T) {
	db := testDB(t)
	users := repos.NewUserRepo(db)
	auth := &services.AuthService{Users: users}

	if err := auth.UpdateProfile("u-maria", "  María López ", "+52 55 1234 5678", "Calle 5 #10"); err != nil {
		t.Fatal(err)
	}
	u, err := users.ByID("u-maria")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "María López" || u.Phone != "+52 55 1234 5678" || u.Address != "Calle 5 #10" {
		t.Fatalf("got %+v", u)
	}
	// Email is not customer-editable and must survive untouched.
	if u.Email != "maria@libroteca.test" {
		t.Fatalf("email changed: %s", u.Email)
	}

	var verr *domain.ValidationError
	if err := auth.UpdateProfile("u-maria", "", "", ""); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for empty name, got %v", err)
	}
	if err := auth.UpdateProfile("", "María", "", ""); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for missing customer, got %v", err)
	}
	u, _ = users.ByID("u-maria")
	if u.Name != "María López" {
		t.Fatal("rejected update must not change the row")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db := testDB(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	if _, err := auth.Login("sid-1", "maria@libroteca.test", "wrong-password"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, err := auth.Login("sid-1", "nobody@libroteca.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
}
