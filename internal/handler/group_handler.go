package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/ratelimit"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /groups 配下のメンバー管理HTTP
type GroupHandler struct {
	uc *usecase.GroupUsecase
}

// DI
func NewGroupHandler(uc *usecase.GroupUsecase) *GroupHandler {
	return &GroupHandler{uc: uc}
}

type AddGroupMemberRequest struct {
	Username string `json:"username"`
}

func (h *GroupHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, limiter *ratelimit.FixedWindow) {
	g := e.Group("/groups")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RateLimit(limiter))

	g.GET("/manager/users", h.listManagers)
	g.POST("/manager/users", h.addManager)
	g.DELETE("/manager/users/:id", h.removeManager)

	g.GET("/delivery-crew/users", h.listDeliveryCrew)
	g.POST("/delivery-crew/users", h.addDeliveryCrew)
	g.DELETE("/delivery-crew/users/:id", h.removeDeliveryCrew)
}

func (h *GroupHandler) listManagers(c echo.Context) error {
	return h.listMembers(c, model.RoleManager)
}

func (h *GroupHandler) addManager(c echo.Context) error {
	return h.addMember(c, model.RoleManager)
}

func (h *GroupHandler) removeManager(c echo.Context) error {
	return h.removeMember(c, model.RoleManager)
}

func (h *GroupHandler) listDeliveryCrew(c echo.Context) error {
	return h.listMembers(c, model.RoleDeliveryCrew)
}

func (h *GroupHandler) addDeliveryCrew(c echo.Context) error {
	return h.addMember(c, model.RoleDeliveryCrew)
}

func (h *GroupHandler) removeDeliveryCrew(c echo.Context) error {
	return h.removeMember(c, model.RoleDeliveryCrew)
}

func (h *GroupHandler) listMembers(c echo.Context, role model.Role) error {
	actor, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMembers(c.Request().Context(), actor, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GroupHandler) addMember(c echo.Context, role model.Role) error {
	actor, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddGroupMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AddMember(c.Request().Context(), actor, role, req.Username); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Message: "user added to group"})
}

func (h *GroupHandler) removeMember(c echo.Context, role model.Role) error {
	actor, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.RemoveMember(c.Request().Context(), actor, role, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "user removed from group"})
}
