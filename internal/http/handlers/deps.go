package handlers

import (
	"github.com/jmoiron/sqlx"

	"libroteca/internal/config"
	"libroteca/internal/repos"
	"libroteca/internal/services"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	ContentHandler  *ContentHandler
	ProfileHandler  *ProfileHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	bookRepo := repos.NewBookRepo(db)
	authorRepo := repos.NewAuthorRepo(db)
	pubRepo := repos.NewPublisherRepo(db)
	cartRepo := repos.NewCartRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	eventRepo := repos.NewEventRepo(db)
	blogRepo := repos.NewBlogRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(bookRepo, authorRepo, pubRepo)
	cartSvc := services.NewCartService(cartRepo, bookRepo)
	checkoutSvc := services.NewCheckoutService(db, cartRepo, bookRepo, saleRepo)
	contentSvc := services.NewContentService(eventRepo, blogRepo)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{
			Cart:     cartSvc,
			Checkout: checkoutSvc,
			Sales:    saleRepo,
		},
		ContentHandler: &ContentHandler{Content: contentSvc},
		ProfileHandler: &ProfileHandler{Auth: auth},
		AdminHandler: &AdminHandler{
			Books:      bookRepo,
			Authors:    authorRepo,
			Publishers: pubRepo,
			Sales:      saleRepo,
			Events:     eventRepo,
			Blog:       blogRepo,
			Users:      userRepo,
			Checkout:   checkoutSvc,
		},
	}
}
