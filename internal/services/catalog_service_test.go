package services_test

import (
	"testing"

	"libroteca/internal/repos"
	"libroteca/internal/services"
)

func TestCheckAvailabilityBuckets(t *testing.T) {
	db := testDB(t)
	svc := services.NewCatalogService(
		repos.NewBookRepo(db), repos.NewAuthorRepo(db), repos.NewPublisherRepo(db))

	// Seeded 1984 has 8 units.
	a, err := svc.CheckAvailability("b-1984")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "IN_STOCK" || a.Qty != 8 {
		t.Fatalf("got %+v", a)
	}

	if _, err := db.Exec(`UPDATE books SET stock=2 WHERE id='b-1984'`); err != nil {
		t.Fatal(err)
	}
	a, err = svc.CheckAvailability("b-1984")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "LOW_STOCK" || a.Qty != 2 {
		t.Fatalf("got %+v", a)
	}

	// Unknown ids read as out of stock rather than an error.
	a, err = svc.CheckAvailability("no-such-book")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "OUT_OF_STOCK" || a.Qty != 0 {
		t.Fatalf("got %+v", a)
	}
}

func TestFeaturedSkipsOutOfStock(t *testing.T) {
	db := testDB(t)
	svc := services.NewCatalogService(
		repos.NewBookRepo(db), repos.NewAuthorRepo(db), repos.NewPublisherRepo(db))

	books, err := svc.Featured(8)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range books {
		if b.Stock == 0 {
			t.Fatalf("out-of-stock book %s on the home page", b.ID)
		}
	}
}
