package handlers

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"libroteca/internal/domain"
	applog "libroteca/internal/log"
	"libroteca/internal/repos"
	"libroteca/internal/services"
	"libroteca/internal/validate"
)

type AdminHandler struct {
	Books      *repos.BookRepo
	Authors    *repos.AuthorRepo
	Publishers *repos.PublisherRepo
	Sales      *repos.SaleRepo
	Events     *repos.EventRepo
	Blog       *repos.BlogRepo
	Users      *repos.UserRepo
	Checkout   *services.CheckoutService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	units, value, err := h.Books.InventoryValue()
	if err != nil {
		applog.Error(c, "admin.dashboard", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
	}
	sales, _ := h.Sales.ListLatest(10)
	return render(c, "admin_dashboard", fiber.Map{
		"StockUnits":     units,
		"InventoryValue": value,
		"RecentSales":    sales,
	})
}

// ---------- Sales ----------

// GET /admin/sales
func (h *AdminHandler) SalesPage(c *fiber.Ctx) error {
	sales, err := h.Sales.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.sales.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load sales"})
	}
	return render(c, "admin_sales", fiber.Map{"Sales": sales})
}

// POST /admin/sales/:id/cancel routes through the checkout processor so
// stock restoration and the status change stay atomic.
func (h *AdminHandler) CancelSale(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if _, err := h.Checkout.CancelSale(id); err != nil {
		var state *domain.InvalidStateError
		if errors.As(err, &state) {
			applog.Info(c, "admin.sales.cancel.rejected", map[string]any{"sale_id": id, "status": state.Status})
			return c.Status(fiber.StatusConflict).SendString(state.Error())
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(404).SendString("sale not found")
		}
		applog.Error(c, "admin.sales.cancel.fail", err, map[string]any{"sale_id": id})
		return c.Status(400).SendString("could not cancel sale")
	}
	applog.Audit(c, "admin.sales.cancel", map[string]any{"sale_id": id})
	return c.Redirect("/admin/sales")
}

// POST /admin/sales/:id/status constrains the back office to the sale
// enum. COMPLETED→CANCELLED must go through CancelSale, and a CANCELLED
// sale can never change state again: its stock was already restored, so
// reopening it would let a later cancel restore the same units twice.
func (h *AdminHandler) UpdateSaleStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	status := strings.ToUpper(strings.TrimSpace(c.FormValue("status")))
	if !ok || status == "" {
		return c.Status(400).SendString("missing id or status")
	}
	if status != domain.SalePending && status != domain.SaleCompleted {
		return c.Status(400).SendString("status must change through cancel")
	}

	sale, err := h.Sales.Header(h.Users.DB, id)
	if err != nil {
		return c.Status(404).SendString("sale not found")
	}
	if sale.Status == domain.SaleCancelled {
		applog.Info(c, "admin.sales.update.rejected", map[string]any{"sale_id": id, "status": sale.Status})
		return c.Status(fiber.StatusConflict).SendString("cancelled sales cannot be reopened")
	}

	if err := h.Sales.UpdateStatus(h.Users.DB, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusConflict).SendString("cancelled sales cannot be reopened")
		}
		applog.Error(c, "admin.sales.update.fail", err, map[string]any{"sale_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.sales.update", map[string]any{"sale_id": id, "status": status})
	return c.Redirect("/admin/sales")
}

// ---------- Books ----------

// GET /admin/books — full list including the out-of-stock shelf.
func (h *AdminHandler) BooksPage(c *fiber.Ctx) error {
	var (
		books []repos.BookListing
		err   error
	)
	onlyOut := c.Query("out_of_stock") == "true"
	if onlyOut {
		books, err = h.Books.ListOutOfStock(200, 0)
	} else {
		books, err = h.Books.List("", false, 200, 0)
	}
	if err != nil {
		applog.Error(c, "admin.books.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load books"})
	}
	units, value, _ := h.Books.InventoryValue()
	authors, _ := h.Authors.List()
	pubs, _ := h.Publishers.List()
	return render(c, "admin_books", fiber.Map{
		"Books": books, "OnlyOutOfStock": onlyOut,
		"StockUnits": units, "InventoryValue": value,
		"Authors": authors, "Publishers": pubs,
	})
}

func (h *AdminHandler) bookFromForm(c *fiber.Ctx, id string) (domain.Book, string) {
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		return domain.Book{}, "invalid title"
	}
	authorID, ok := validate.ID(c.FormValue("author_id"))
	if !ok {
		return domain.Book{}, "invalid author"
	}
	pubID, ok := validate.ID(c.FormValue("publisher_id"))
	if !ok {
		return domain.Book{}, "invalid publisher"
	}
	isbn, ok := validate.ISBN(c.FormValue("isbn"))
	if !ok {
		return domain.Book{}, "invalid ISBN"
	}
	year, ok := validate.Year(c.FormValue("published_year"))
	if !ok {
		return domain.Book{}, "invalid year"
	}
	genre, ok := validate.Genre(c.FormValue("genre"))
	if !ok {
		return domain.Book{}, "invalid genre"
	}
	price, ok := validate.Money(c.FormValue("price"))
	if !ok {
		return domain.Book{}, "invalid price"
	}
	stock, err := strconv.Atoi(c.FormValue("stock", "0"))
	if err != nil || stock < 0 {
		return domain.Book{}, "invalid stock"
	}
	return domain.Book{
		ID: id, Title: title, AuthorID: authorID, PublisherID: pubID,
		ISBN: isbn, PublishedYear: year, Genre: genre, Price: price, Stock: stock,
		Description: strings.TrimSpace(c.FormValue("description")),
	}, ""
}

// POST /admin/books
func (h *AdminHandler) CreateBook(c *fiber.Ctx) error {
	b, msg := h.bookFromForm(c, uuid.NewString())
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Books.Create(b); err != nil {
		applog.Error(c, "admin.books.create.fail", err, map[string]any{"isbn": b.ISBN})
		return c.Status(400).SendString("could not save book")
	}
	applog.Audit(c, "admin.books.create", map[string]any{"book_id": b.ID})
	return c.Redirect("/admin/books")
}

// POST /admin/books/:id
func (h *AdminHandler) UpdateBook(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	b, msg := h.bookFromForm(c, id)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Books.Update(b); err != nil {
		applog.Error(c, "admin.books.update.fail", err, map[string]any{"book_id": id})
		return c.Status(400).SendString("could not save book")
	}
	applog.Audit(c, "admin.books.update", map[string]any{"book_id": id})
	return c.Redirect("/admin/books")
}

// POST /admin/books/:id/delete — refused while sale history references
// the book (restricted foreign key), preserving past sales.
func (h *AdminHandler) DeleteBook(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Books.Delete(id); err != nil {
		applog.Info(c, "admin.books.delete.refused", map[string]any{"book_id": id, "error": err.Error()})
		return c.Status(fiber.StatusConflict).SendString("book has sale history and cannot be deleted")
	}
	applog.Audit(c, "admin.books.delete", map[string]any{"book_id": id})
	return c.Redirect("/admin/books")
}

// ---------- Authors ----------

func (h *AdminHandler) AuthorsPage(c *fiber.Ctx) error {
	authors, err := h.Authors.List()
	if err != nil {
		applog.Error(c, "admin.authors.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load authors"})
	}
	return render(c, "admin_authors", fiber.Map{"Authors": authors})
}

func (h *AdminHandler) authorFromForm(c *fiber.Ctx, id string) (domain.Author, string) {
	first, ok := validate.Name(c.FormValue("first_name"))
	if !ok {
		return domain.Author{}, "invalid first name"
	}
	last, ok := validate.Name(c.FormValue("last_name"))
	if !ok {
		return domain.Author{}, "invalid last name"
	}
	return domain.Author{
		ID: id, FirstName: first, LastName: last,
		Nationality: strings.TrimSpace(c.FormValue("nationality")),
		BornOn:      strings.TrimSpace(c.FormValue("born_on")),
		Bio:         strings.TrimSpace(c.FormValue("bio")),
		Website:     strings.TrimSpace(c.FormValue("website")),
	}, ""
}

func (h *AdminHandler) CreateAuthor(c *fiber.Ctx) error {
	a, msg := h.authorFromForm(c, uuid.NewString())
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Authors.Create(a); err != nil {
		applog.Error(c, "admin.authors.create.fail", err, nil)
		return c.Status(400).SendString("could not save author")
	}
	applog.Audit(c, "admin.authors.create", map[string]any{"author_id": a.ID})
	return c.Redirect("/admin/authors")
}

func (h *AdminHandler) UpdateAuthor(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	a, msg := h.authorFromForm(c, id)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Authors.Update(a); err != nil {
		applog.Error(c, "admin.authors.update.fail", err, map[string]any{"author_id": id})
		return c.Status(400).SendString("could not save author")
	}
	applog.Audit(c, "admin.authors.update", map[string]any{"author_id": id})
	return c.Redirect("/admin/authors")
}

func (h *AdminHandler) DeleteAuthor(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Authors.Delete(id); err != nil {
		return c.Status(fiber.StatusConflict).SendString("author still has books in the catalog")
	}
	applog.Audit(c, "admin.authors.delete", map[string]any{"author_id": id})
	return c.Redirect("/admin/authors")
}

// ---------- Publishers ----------

func (h *AdminHandler) PublishersPage(c *fiber.Ctx) error {
	pubs, err := h.Publishers.List()
	if err != nil {
		applog.Error(c, "admin.publishers.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load publishers"})
	}
	return render(c, "admin_publishers", fiber.Map{"Publishers": pubs})
}

func (h *AdminHandler) publisherFromForm(c *fiber.Ctx, id string) (domain.Publisher, string) {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return domain.Publisher{}, "invalid name"
	}
	email := strings.TrimSpace(c.FormValue("email"))
	if email != "" {
		if _, ok := validate.Email(email); !ok {
			return domain.Publisher{}, "invalid email"
		}
	}
	return domain.Publisher{
		ID: id, Name: name, Email: email,
		Address: strings.TrimSpace(c.FormValue("address")),
		Phone:   strings.TrimSpace(c.FormValue("phone")),
		Website: strings.TrimSpace(c.FormValue("website")),
		Country: strings.TrimSpace(c.FormValue("country")),
	}, ""
}

func (h *AdminHandler) CreatePublisher(c *fiber.Ctx) error {
	p, msg := h.publisherFromForm(c, uuid.NewString())
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Publishers.Create(p); err != nil {
		applog.Error(c, "admin.publishers.create.fail", err, nil)
		return c.Status(400).SendString("could not save publisher")
	}
	applog.Audit(c, "admin.publishers.create", map[string]any{"publisher_id": p.ID})
	return c.Redirect("/admin/publishers")
}

func (h *AdminHandler) UpdatePublisher(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	p, msg := h.publisherFromForm(c, id)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Publishers.Update(p); err != nil {
		applog.Error(c, "admin.publishers.update.fail", err, map[string]any{"publisher_id": id})
		return c.Status(400).SendString("could not save publisher")
	}
	applog.Audit(c, "admin.publishers.update", map[string]any{"publisher_id": id})
	return c.Redirect("/admin/publishers")
}

func (h *AdminHandler) DeletePublisher(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Publishers.Delete(id); err != nil {
		return c.Status(fiber.StatusConflict).SendString("publisher still has books in the catalog")
	}
	applog.Audit(c, "admin.publishers.delete", map[string]any{"publisher_id": id})
	return c.Redirect("/admin/publishers")
}

// ---------- Events ----------

func (h *AdminHandler) EventsPage(c *fiber.Ctx) error {
	events, err := h.Events.ListAll()
	if err != nil {
		applog.Error(c, "admin.events.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load events"})
	}
	return render(c, "admin_events", fiber.Map{"Events": events})
}

func (h *AdminHandler) eventFromForm(c *fiber.Ctx, id string) (domain.Event, string) {
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		return domain.Event{}, "invalid title"
	}
	startsAt := strings.TrimSpace(c.FormValue("starts_at"))
	if startsAt == "" {
		return domain.Event{}, "missing date"
	}
	price, ok := validate.Money(c.FormValue("price"))
	if !ok {
		return domain.Event{}, "invalid price"
	}
	capacity, err := strconv.Atoi(c.FormValue("capacity", "50"))
	if err != nil || capacity < 1 {
		return domain.Event{}, "invalid capacity"
	}
	category := strings.ToUpper(strings.TrimSpace(c.FormValue("category")))
	if category == "" {
		category = "PRESENTATION"
	}
	switch category {
	case "PRESENTATION", "BOOK_CLUB", "WORKSHOP", "SIGNING", "CONFERENCE", "LAUNCH", "CHILDREN":
	default:
		return domain.Event{}, "invalid category"
	}
	return domain.Event{
		ID: id, Title: title, StartsAt: startsAt, Price: price,
		Capacity: capacity, Category: category,
		Description: strings.TrimSpace(c.FormValue("description")),
		Location:    strings.TrimSpace(c.FormValue("location")),
		Active:      c.FormValue("active", "1") != "0",
	}, ""
}

func (h *AdminHandler) CreateEvent(c *fiber.Ctx) error {
	ev, msg := h.eventFromForm(c, uuid.NewString())
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Events.Create(ev); err != nil {
		applog.Error(c, "admin.events.create.fail", err, nil)
		return c.Status(400).SendString("could not save event")
	}
	applog.Audit(c, "admin.events.create", map[string]any{"event_id": ev.ID})
	return c.Redirect("/admin/events")
}

func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	ev, msg := h.eventFromForm(c, id)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Events.Update(ev); err != nil {
		applog.Error(c, "admin.events.update.fail", err, map[string]any{"event_id": id})
		return c.Status(400).SendString("could not save event")
	}
	applog.Audit(c, "admin.events.update", map[string]any{"event_id": id})
	return c.Redirect("/admin/events")
}

func (h *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Events.Delete(id); err != nil {
		return c.Status(400).SendString("could not delete event")
	}
	applog.Audit(c, "admin.events.delete", map[string]any{"event_id": id})
	return c.Redirect("/admin/events")
}

// ---------- Blog ----------

func (h *AdminHandler) BlogPage(c *fiber.Ctx) error {
	posts, err := h.Blog.ListAll()
	if err != nil {
		applog.Error(c, "admin.blog.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load blog posts"})
	}
	return render(c, "admin_blog", fiber.Map{"Posts": posts})
}

func (h *AdminHandler) postFromForm(c *fiber.Ctx, id, authorID string) (domain.BlogPost, string) {
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		return domain.BlogPost{}, "invalid title"
	}
	content := strings.TrimSpace(c.FormValue("content"))
	if content == "" {
		return domain.BlogPost{}, "missing content"
	}
	category := strings.ToUpper(strings.TrimSpace(c.FormValue("category")))
	if category == "" {
		category = "GENERAL"
	}
	switch category {
	case "GENERAL", "REVIEW", "AUTHOR", "EVENT", "WORKSHOP", "NEWS", "PICKS", "INTERVIEW":
	default:
		return domain.BlogPost{}, "invalid category"
	}
	return domain.BlogPost{
		ID: id, Title: title, Content: content, AuthorID: authorID,
		Summary:  strings.TrimSpace(c.FormValue("summary")),
		Category: category,
		Active:   c.FormValue("active", "1") != "0",
	}, ""
}

func (h *AdminHandler) CreatePost(c *fiber.Ctx) error {
	u := currentUser(c)
	p, msg := h.postFromForm(c, uuid.NewString(), u.ID)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Blog.Create(p); err != nil {
		applog.Error(c, "admin.blog.create.fail", err, nil)
		return c.Status(400).SendString("could not save post")
	}
	applog.Audit(c, "admin.blog.create", map[string]any{"post_id": p.ID})
	return c.Redirect("/admin/blog")
}

func (h *AdminHandler) UpdatePost(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	p, msg := h.postFromForm(c, id, u.ID)
	if msg != "" {
		return c.Status(400).SendString(msg)
	}
	if err := h.Blog.Update(p); err != nil {
		applog.Error(c, "admin.blog.update.fail", err, map[string]any{"post_id": id})
		return c.Status(400).SendString("could not save post")
	}
	applog.Audit(c, "admin.blog.update", map[string]any{"post_id": id})
	return c.Redirect("/admin/blog")
}

func (h *AdminHandler) DeletePost(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Blog.Delete(id); err != nil {
		return c.Status(400).SendString("could not delete post")
	}
	applog.Audit(c, "admin.blog.delete", map[string]any{"post_id": id})
	return c.Redirect("/admin/blog")
}

// ---------- Customers ----------

func (h *AdminHandler) CustomersPage(c *fiber.Ctx) error {
	users, err := h.Users.ListCustomers()
	if err != nil {
		applog.Error(c, "admin.customers.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load customers"})
	}
	return render(c, "admin_customers", fiber.Map{"Customers": users})
}
