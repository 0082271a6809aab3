package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/orgdesk/inbox/backend/internal/apperr"
	"github.com/orgdesk/inbox/backend/internal/middleware"
	"github.com/orgdesk/inbox/backend/internal/models"
	"github.com/orgdesk/inbox/backend/internal/services"
)

// MessageHandler handles message-related HTTP requests.
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// RegisterMessageRoutes registers message routes.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages", h.ListVisible)
	g.GET("/messages/my", h.ListMine)
	g.GET("/messages/count", h.CountUnread)
	g.GET("/messages/audience/:targetType/:target", h.Audience)
	g.POST("/messages", h.Create)
	g.PUT("/messages/:id", h.Update)
	g.DELETE("/messages/:id", h.Delete)
}

// Create stores a new message and returns its identifier.
func (h *MessageHandler) Create(c echo.Context) error {
	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SaveMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := h.messageService.Create(login, req)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"id": id}})
}

// Update replaces an existing message.
func (h *MessageHandler) Update(c echo.Context) error {
	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message ID")
	}

	var req models.SaveMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.messageService.Update(login, uint(id), req); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes a message the acting user may administer.
func (h *MessageHandler) Delete(c echo.Context) error {
	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message ID")
	}

	if err := h.messageService.Delete(login, uint(id)); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListMine returns the page of messages addressed to the acting user.
func (h *MessageHandler) ListMine(c echo.Context) error {
	return h.listWith(c, h.messageService.ListMine)
}

// ListVisible returns the page of messages the acting user may administer.
func (h *MessageHandler) ListVisible(c echo.Context) error {
	return h.listWith(c, h.messageService.ListVisible)
}

func (h *MessageHandler) listWith(c echo.Context,
	list func(string, string, services.PageSpec) (*services.MessagePage, error)) error {

	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	search := c.QueryParam("search")

	result, err := list(login, search, services.PageSpec{Page: page, Limit: limit})
	if err != nil {
		return mapServiceError(err)
	}

	totalPages := int(math.Ceil(float64(result.Total) / float64(result.Limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"messages": result.Items,
		},
		"meta": echo.Map{
			"currentPage":     result.Page,
			"totalPages":      totalPages,
			"totalItems":      result.Total,
			"itemsPerPage":    result.Limit,
			"hasNextPage":     result.Page < totalPages,
			"hasPreviousPage": result.Page > 1,
		},
	})
}

// CountUnread returns the unread message count for the acting user.
func (h *MessageHandler) CountUnread(c echo.Context) error {
	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.messageService.CountUnread(login)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// Audience returns the number of users reachable by a target specification.
func (h *MessageHandler) Audience(c echo.Context) error {
	login := middleware.LoginFromContext(c)
	if login == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetType := models.MessageTargetType(c.Param("targetType"))
	count, err := h.messageService.Audience(login, targetType, c.Param("target"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"audience": count}})
}

// mapServiceError translates the service error taxonomy to HTTP. NotFound and
// InvalidTarget carry the offending field for form highlighting; the content
// rejection stays a bare forbidden.
func mapServiceError(err error) error {
	var notFound *apperr.NotFoundError
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusNotFound, echo.Map{"field": notFound.Field, "error": "unknown-id"})
	}
	var invalid *apperr.InvalidTargetError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"field": invalid.Field, "error": "invalid-target"})
	}
	if errors.Is(err, apperr.ErrContentRejected) {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
