package account

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/apperr"
	"github.com/offerhub/offerhub/internal/media"
)

// Handler exposes signup and login endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type signupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Username string `json:"username" form:"username"`
	Phone    string `json:"phone" form:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Signup handles account creation from a multipart form with an optional avatar file.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := SignupInput{Email: req.Email, Password: req.Password, Username: req.Username, Phone: req.Phone}
	if fh, err := c.FormFile("avatar"); err == nil {
		up, err := media.FromFileHeader(fh)
		if err != nil {
			return apperr.Validation(err.Error())
		}
		in.Avatar = up
	}
	pub, err := h.service.CreateAccount(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(pub)
}

// Login verifies credentials and returns the account's existing token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	pub, err := h.service.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(pub)
}

// parseBody decodes JSON, urlencoded or multipart bodies. An empty body
// leaves out untouched so that required-field checks report the problem.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}
