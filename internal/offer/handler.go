package offer

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/apperr"
	"github.com/offerhub/offerhub/internal/auth"
	"github.com/offerhub/offerhub/internal/media"
)

// attributeFields maps form field names to attribute tags.
var attributeFields = map[string]Tag{
	"brand":     TagBrand,
	"size":      TagSize,
	"condition": TagCondition,
	"color":     TagColor,
	"city":      TagCity,
}

var searchKeys = []string{"title", "priceMin", "priceMax", "sort", "limit", "page"}

// Handler exposes offer HTTP endpoints.
type Handler struct {
	catalog *Catalog
	mutator *Mutator
}

// NewHandler constructs an offer HTTP handler.
func NewHandler(catalog *Catalog, mutator *Mutator) *Handler {
	return &Handler{catalog: catalog, mutator: mutator}
}

// List searches offers from query-string filters.
func (h *Handler) List(c *fiber.Ctx) error {
	params := make(Params, len(searchKeys))
	for _, key := range searchKeys {
		if v := c.Query(key); v != "" {
			params[key] = v
		}
	}
	q, err := ParseSearch(params)
	if err != nil {
		return err
	}
	res, err := h.catalog.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(res)
}

// Get returns one offer with its owner.
func (h *Handler) Get(c *fiber.Ctx) error {
	o, err := h.catalog.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(o)
}

// Publish creates an offer owned by the authenticated caller.
func (h *Handler) Publish(c *fiber.Ctx) error {
	owner, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrUnauthorized
	}
	fields, err := formFields(c)
	if err != nil {
		return err
	}
	in := PublishInput{
		Title:       fields["title"],
		Description: fields["description"],
		Brand:       fields["brand"],
		Size:        fields["size"],
		Condition:   fields["condition"],
		Color:       fields["color"],
		City:        fields["city"],
	}
	if raw := fields["price"]; raw != "" {
		if in.Price, err = parsePriceField(raw); err != nil {
			return err
		}
	}
	if in.Image, err = picture(c); err != nil {
		return err
	}

	o, err := h.mutator.Publish(c.UserContext(), owner, in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(o)
}

// Update applies the fields present in the request to an offer.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrUnauthorized
	}
	fields, err := formFields(c)
	if err != nil {
		return err
	}
	patch, err := patchFromFields(fields)
	if err != nil {
		return err
	}
	if patch.Image, err = picture(c); err != nil {
		return err
	}

	o, err := h.mutator.Update(c.UserContext(), c.Params("id"), caller, patch)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(o)
}

// Delete removes an offer and its pictures.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFrom(c); !ok {
		return apperr.ErrUnauthorized
	}
	if err := h.mutator.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Offer deleted"})
}

func patchFromFields(fields map[string]string) (Patch, error) {
	var p Patch
	if v, ok := fields["title"]; ok {
		p.Title = &v
	}
	if v, ok := fields["description"]; ok {
		p.Description = &v
	}
	if v, ok := fields["price"]; ok {
		price, err := parsePriceField(v)
		if err != nil {
			return Patch{}, err
		}
		p.Price = &price
	}
	for name, tag := range attributeFields {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if p.Attributes == nil {
			p.Attributes = make(map[Tag]string)
		}
		p.Attributes[tag] = v
	}
	return p, nil
}

func parsePriceField(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !validPrice(v) {
		return 0, errInvalidPrice
	}
	return v, nil
}

// formFields collects the fields present in a multipart, urlencoded or
// JSON body. Absent fields are missing from the map.
func formFields(c *fiber.Ctx) (map[string]string, error) {
	fields := make(map[string]string)
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			fields[string(k)] = string(v)
		})
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		if len(c.Body()) == 0 {
			break
		}
		var raw map[string]any
		if err := json.Unmarshal(c.Body(), &raw); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		for k, v := range raw {
			switch v := v.(type) {
			case string:
				fields[k] = v
			case float64:
				fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				fields[k] = strconv.FormatBool(v)
			}
		}
	}
	return fields, nil
}

// picture returns the optional "picture" file field.
func picture(c *fiber.Ctx) (*media.Upload, error) {
	if !strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("picture")
	if err != nil {
		return nil, nil
	}
	up, err := media.FromFileHeader(fh)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	return up, nil
}
