package booking

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the commercial state of a booking.
type Status string

// Known booking statuses. Other values pass through lowercased.
const (
	StatusConfirmed Status = "confirmed"
	StatusOption    Status = "option"
	StatusCancelled Status = "cancelled"
)

// ParseStatus normalizes a raw status string.
func ParseStatus(s string) Status {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "confirmed", "confirme", "confirmé", "firm":
		return StatusConfirmed
	case "option", "optional", "pending":
		return StatusOption
	case "cancelled", "canceled", "annule", "annulé":
		return StatusCancelled
	default:
		return Status(v)
	}
}

// Booking is a rental interval of one support. Start is never after End.
type Booking struct {
	ID        string
	SupportID string
	Start     time.Time
	End       time.Time
	Client    string
	Vendor    string
	Total     decimal.Decimal
	Status    Status
}

// Support is a physical display asset.
type Support struct {
	ID    string
	Code  string
	Title string
	City  string
}

// Label returns the most descriptive name available for the support.
func (s Support) Label() string {
	switch {
	case s.Code != "" && s.Title != "":
		return s.Code + " " + s.Title
	case s.Title != "":
		return s.Title
	case s.Code != "":
		return s.Code
	default:
		return s.ID
	}
}

// Directory resolves support IDs to support metadata.
type Directory map[string]Support

// NewDirectory indexes supports by ID. Later duplicates win.
func NewDirectory(supports []Support) Directory {
	d := make(Directory, len(supports))
	for _, s := range supports {
		d[s.ID] = s
	}
	return d
}

// Lookup returns the support for id, or a placeholder with only the ID set.
func (d Directory) Lookup(id string) Support {
	if s, ok := d[id]; ok {
		return s
	}
	return Support{ID: id}
}
