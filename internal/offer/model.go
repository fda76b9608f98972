package offer

import (
	"time"

	"github.com/offerhub/offerhub/internal/account"
	"github.com/offerhub/offerhub/internal/media"
)

// Offer is a published listing.
type Offer struct {
	ID          string          `json:"_id"`
	Title       string          `json:"product_title"`
	Description string          `json:"product_description"`
	Price       float64         `json:"product_price"`
	Details     Details         `json:"product_details"`
	Image       *media.ImageRef `json:"product_image,omitempty"`
	Owner       Owner           `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Owner is a weak reference to the publishing account with its public
// profile resolved.
type Owner struct {
	ID      string          `json:"_id"`
	Account account.Profile `json:"account"`
}

// Summary is the list projection of an offer.
type Summary struct {
	ID    string  `json:"_id"`
	Title string  `json:"product_title"`
	Price float64 `json:"product_price"`
	Owner Owner   `json:"owner"`
}

// Summary projects o for search results.
func (o Offer) Summary() Summary {
	return Summary{ID: o.ID, Title: o.Title, Price: o.Price, Owner: o.Owner}
}

// SearchResult is a page of offers plus the unpaginated match count.
type SearchResult struct {
	Count  int       `json:"count"`
	Offers []Summary `json:"offers"`
}

// PublishInput is the decoded publish form.
type PublishInput struct {
	Title       string
	Description string
	Price       float64
	Brand       string
	Size        string
	Condition   string
	Color       string
	City        string
	Image       *media.Upload
}

// Details builds the five attributes in their fixed order.
func (in PublishInput) Details() Details {
	return Details{Brand: in.Brand, Size: in.Size, Condition: in.Condition, Color: in.Color, City: in.City}
}

// Field names a stored column that an update touched.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldDetails     Field = "details"
	FieldImage       Field = "image"
)

// Patch is a partial update. Nil pointers and missing attribute keys leave
// the stored value untouched.
type Patch struct {
	Title       *string
	Description *string
	Price       *float64
	Attributes  map[Tag]string
	Image       *media.Upload
}

// Apply writes the scalar and attribute parts of p onto o and returns the
// fields that changed. Attributes are matched by tag.
func (p Patch) Apply(o *Offer) []Field {
	var changed []Field
	if p.Title != nil && *p.Title != o.Title {
		o.Title = *p.Title
		changed = append(changed, FieldTitle)
	}
	if p.Description != nil && *p.Description != o.Description {
		o.Description = *p.Description
		changed = append(changed, FieldDescription)
	}
	if p.Price != nil && *p.Price != o.Price {
		o.Price = *p.Price
		changed = append(changed, FieldPrice)
	}

	detailsChanged := false
	for _, tag := range Tags {
		v, ok := p.Attributes[tag]
		if !ok || o.Details.Value(tag) == v {
			continue
		}
		o.Details.set(tag, v)
		detailsChanged = true
	}
	if detailsChanged {
		changed = append(changed, FieldDetails)
	}
	return changed
}

// Empty reports whether p carries no change at all.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && len(p.Attributes) == 0 && p.Image == nil
}
