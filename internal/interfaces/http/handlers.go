package http

import (
	"errors"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"sales-cockpit/internal/application"
	"sales-cockpit/internal/domain"
	"sales-cockpit/internal/infrastructure/auth"
)

func handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAuthenticated):
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamQuery), errors.Is(err, domain.ErrUpstreamService):
		return c.JSON(stdhttp.StatusBadGateway, map[string]string{"error": "upstream failure"})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// callerID returns the verified identity set by the session
// middleware; empty when the request is unauthenticated.
func callerID(c echo.Context) string {
	id, _ := c.Get(auth.ContextKeyUserID).(string)
	return id
}

type DashboardHandler struct {
	service *application.DashboardService
}

func NewDashboardHandler(service *application.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Access(c echo.Context) error {
	access, err := h.service.ResolveAccess(c.Request().Context(), callerID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, access)
}

func (h *DashboardHandler) Refresh(c echo.Context) error {
	var req struct {
		DashboardID int `json:"dashboard_id" validate:"required,gt=0"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	url, err := h.service.RefreshEmbedURL(c.Request().Context(), callerID(c), req.DashboardID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"embed_url": url})
}

type EmailsHandler struct {
	service *application.EmailService
}

func NewEmailsHandler(service *application.EmailService) *EmailsHandler {
	return &EmailsHandler{service: service}
}

func (h *EmailsHandler) Generate(c echo.Context) error {
	var req struct {
		Recipient string   `json:"recipient"`
		KeyPoints []string `json:"key_points" validate:"required,min=1,dive,required"`
		Tone      string   `json:"tone"`
		Language  string   `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	email, err := h.service.Generate(c.Request().Context(), callerID(c), application.GenerateEmailInput{
		Recipient: req.Recipient,
		KeyPoints: req.KeyPoints,
		Tone:      req.Tone,
		Language:  req.Language,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"email": email})
}

func (h *EmailsHandler) Improve(c echo.Context) error {
	var req struct {
		Draft       string `json:"draft" validate:"required"`
		Instruction string `json:"instruction"`
		Tone        string `json:"tone"`
		Language    string `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	email, err := h.service.Improve(c.Request().Context(), callerID(c), application.ImproveEmailInput{
		Draft:       req.Draft,
		Instruction: req.Instruction,
		Tone:        req.Tone,
		Language:    req.Language,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"email": email})
}

type CallsHandler struct {
	service *application.SummaryService
}

func NewCallsHandler(service *application.SummaryService) *CallsHandler {
	return &CallsHandler{service: service}
}

func (h *CallsHandler) Summarize(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "audio file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "unable to read audio file"})
	}
	defer src.Close()

	summary, err := h.service.Summarize(c.Request().Context(), callerID(c), file.Filename, src)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, summary)
}

func (h *CallsHandler) List(c echo.Context) error {
	summaries, err := h.service.List(c.Request().Context(), callerID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, summaries)
}

type UsersHandler struct {
	service *application.UserService
}

func NewUsersHandler(service *application.UserService) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) Me(c echo.Context) error {
	account, err := h.service.Me(c.Request().Context(), callerID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, account)
}

func (h *UsersHandler) List(c echo.Context) error {
	accounts, err := h.service.ListUsers(c.Request().Context(), callerID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, accounts)
}

func (h *UsersHandler) Update(c echo.Context) error {
	var req struct {
		FirstName   *string   `json:"first_name"`
		LastName    *string   `json:"last_name"`
		DashboardID *int      `json:"dashboard_id" validate:"omitempty,gte=0"`
		Roles       *[]string `json:"roles"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	patch := application.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DashboardID: req.DashboardID,
	}
	if req.Roles != nil {
		roles := make([]domain.Role, 0, len(*req.Roles))
		for _, role := range *req.Roles {
			roles = append(roles, domain.Role(role))
		}
		patch.Roles = &roles
	}
	account, err := h.service.UpdateUser(c.Request().Context(), callerID(c), c.Param("id"), patch)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, account)
}
