package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Colour    string          `json:"colour,omitempty"`
	Brand     string          `json:"brand,omitempty"`
	Size      string          `json:"size,omitempty"`
	Rating    *int            `json:"rating,omitempty"`
}

type Store struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	WebAddress      string           `json:"web_address,omitempty"`
	PhysicalAddress string           `json:"physical_address,omitempty"`
	Latitude        *decimal.Decimal `json:"latitude,omitempty"`
	Longitude       *decimal.Decimal `json:"longitude,omitempty"`
	Logo            []byte           `json:"logo,omitempty"`
	LogoMimeType    string           `json:"logo_mime_type,omitempty"`
	LogoFilename    string           `json:"logo_filename,omitempty"`
	LogoCharset     string           `json:"logo_charset,omitempty"`
	LogoLastUpdated *time.Time       `json:"logo_last_updated,omitempty"`
}
