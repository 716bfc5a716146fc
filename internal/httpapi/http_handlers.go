package httpapi

// this file contains the HTTP handlers for the API operations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo"

	"github.com/hackernews-go/app/internal/repository"
	"github.com/hackernews-go/app/internal/service"
)

func (h *Router) healthCheckHandler(c echo.Context) error {
	return c.String(http.StatusOK, "I am up and running!")
}

func (h *Router) signupHandler(c echo.Context) error {
	form := struct {
		Email    string `json:"email" form:"email" validate:"required,email"`
		Password string `json:"password" form:"password" validate:"required"`
		Name     string `json:"name" form:"name" validate:"required"`
	}{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing form data"})
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	payload, err := h.svc.Signup(form.Email, form.Password, form.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *Router) loginHandler(c echo.Context) error {
	form := struct {
		Email    string `json:"email" form:"email" validate:"required,email"`
		Password string `json:"password" form:"password" validate:"required"`
	}{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing form data"})
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	payload, err := h.svc.Login(form.Email, form.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *Router) newLinkHandler(c echo.Context) error {
	form := struct {
		URL         string `json:"url" form:"url" validate:"required"`
		Description string `json:"description" form:"description" validate:"required"`
	}{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing form data"})
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	userID := userIDFromContext(c)
	link, err := h.svc.Post(form.URL, form.Description, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *Router) voteHandler(c echo.Context) error {
	form := struct {
		LinkID int64 `json:"link_id" form:"link_id" validate:"required"`
	}{}
	if err := c.Bind(&form); err != nil || form.LinkID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing link_id"})
	}

	userID := userIDFromContext(c)
	vote, err := h.svc.Vote(form.LinkID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, vote)
}

func (h *Router) linkByIdHandler(c echo.Context) error {
	lid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Bad link id"})
	}
	link, err := h.svc.GetLinkByID(lid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *Router) feedHandler(c echo.Context) error {
	params := repository.FeedParams{
		Filter:  c.QueryParam("filter"),
		OrderBy: c.QueryParam("orderBy"),
	}
	if v := c.QueryParam("skip"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Bad skip value"})
		}
		params.Skip = n
	}
	if v := c.QueryParam("first"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Bad first value"})
		}
		params.First = n
	} else {
		params.First = h.pageSize
	}

	feed, err := h.svc.Feed(params)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, feed)
}

func userIDFromContext(c echo.Context) int64 {
	claims := c.Get("user").(*jwt.Token).Claims.(jwt.MapClaims)
	return int64(claims["user_id"].(float64))
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	var (
		authErr *service.AuthError
		valErr  *service.ValidationError
		dupErr  *service.DuplicateVoteError
	)
	switch {
	case errors.As(err, &authErr):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.As(err, &valErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &dupErr):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal error"})
	}
}
