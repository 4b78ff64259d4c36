package domain

import "github.com/shopspring/decimal"

// DefaultTaxRate is the IVA applied at checkout (16%).
var DefaultTaxRate = decimal.New(16, -2)

// Genres maps the genre codes carried on books to display names.
var Genres = map[string]string{
	"FIC": "Fiction",
	"ROM": "Romance",
	"TER": "Horror",
	"CIE": "Science Fiction",
	"FAN": "Fantasy",
	"HIS": "Historical",
	"BIO": "Biography",
	"INF": "Children",
}

const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

const (
	SalePending   = "PENDING"
	SaleCompleted = "COMPLETED"
	SaleCancelled = "CANCELLED"
)

type Author struct {
	ID          string `db:"id"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Nationality string `db:"nationality"`
	BornOn      string `db:"born_on"`
	Bio         string `db:"bio"`
	Website     string `db:"website"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (a Author) FullName() string { return a.FirstName + " " + a.LastName }

type Publisher struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Address   string `db:"address"`
	Phone     string `db:"phone"`
	Email     string `db:"email"`
	Website   string `db:"website"`
	Country   string `db:"country"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Book struct {
	ID            string          `db:"id"`
	Title         string          `db:"title"`
	AuthorID      string          `db:"author_id"`
	PublisherID   string          `db:"publisher_id"`
	ISBN          string          `db:"isbn"`
	PublishedYear int             `db:"published_year"`
	Genre         string          `db:"genre"`
	Price         decimal.Decimal `db:"price"`
	Stock         int             `db:"stock"`
	Description   string          `db:"description"`
	CoverPath     string          `db:"cover_path"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

// Available reports whether the book can still be sold.
func (b Book) Available() bool { return b.Stock > 0 }

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

type CartLine struct {
	ID         string `db:"id"`
	CustomerID string `db:"customer_id"`
	BookID     string `db:"book_id"`
	Qty        int    `db:"qty"`
	AddedAt    string `db:"added_at"`
}

type Sale struct {
	ID             string          `db:"id"`
	CustomerID     string          `db:"customer_id"`
	SoldAt         string          `db:"sold_at"`
	Total          decimal.Decimal `db:"total"`
	PaymentMethod  string          `db:"payment_method"`
	Status         string          `db:"status"`
	DiscountPct    decimal.Decimal `db:"discount_pct"`
	AmountReceived decimal.Decimal `db:"amount_received"`
	ChangeDue      decimal.Decimal `db:"change_due"`

	Lines []SaleLine `db:"-"`
}

// SaleLine keeps title and unit price snapshots so sale history
// survives later edits to the book record.
type SaleLine struct {
	ID        string          `db:"id"`
	SaleID    string          `db:"sale_id"`
	BookID    string          `db:"book_id"`
	Title     string          `db:"title"`
	Qty       int             `db:"qty"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	TaxRate   decimal.Decimal `db:"tax_rate"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

type Event struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	StartsAt    string          `db:"starts_at"`
	Location    string          `db:"location"`
	Category    string          `db:"category"`
	Capacity    int             `db:"capacity"`
	Price       decimal.Decimal `db:"price"`
	Active      bool            `db:"active"`
	ImagePath   string          `db:"image_path"`
}

type BlogPost struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Content     string `db:"content"`
	Summary     string `db:"summary"`
	AuthorID    string `db:"author_id"`
	Category    string `db:"category"`
	Active      bool   `db:"active"`
	PublishedAt string `db:"published_at"`
	ImagePath   string `db:"image_path"`
}
