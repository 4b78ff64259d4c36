package services

import (
	"database/sql"
	"errors"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
)

type CatalogService struct {
	Books      *repos.BookRepo
	Authors    *repos.AuthorRepo
	Publishers *repos.PublisherRepo
}

func NewCatalogService(books *repos.BookRepo, authors *repos.AuthorRepo, pubs *repos.PublisherRepo) *CatalogService {
	return &CatalogService{Books: books, Authors: authors, Publishers: pubs}
}

// Featured returns in-stock books for the home page.
func (s *CatalogService) Featured(limit int) ([]repos.BookListing, error) {
	if limit <= 0 {
		limit = 8
	}
	return s.Books.List("", true, limit, 0)
}

func (s *CatalogService) ListBooks(genre string, page, pageSize int) ([]repos.BookListing, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Books.List(genre, true, pageSize, offset)
}

func (s *CatalogService) GetBook(id string) (repos.BookListing, error) {
	return s.Books.Detail(id)
}

func (s *CatalogService) ListAuthors() ([]domain.Author, error) {
	return s.Authors.List()
}

func (s *CatalogService) GetAuthor(id string) (domain.Author, error) {
	return s.Authors.Get(id)
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *CatalogService) CheckAvailability(bookID string) (domain.Availability, error) {
	b, err := s.Books.Get(bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case b.Stock >= 5:
		status = "IN_STOCK"
	case b.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: b.Stock}, nil
}
