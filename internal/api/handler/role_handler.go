package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesskeeper/identity-system/internal/api/metrics"
	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

type changeRoleRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	NextRole string `json:"next_role" validate:"required,oneof=USER ADMIN SUPER_ADMIN"`
}

// ChangeRole applies a role mutation on the target user. The acting
// authority is the caller's own identity taken from the bearer token.
//
// @Summary      Change a user's role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  changeRoleRequest  true  "Target user and next role"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /roles/change [post]
func (h *RoleHandler) ChangeRole(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	next := domain.Role(req.NextRole)
	if err := h.roleService.ChangeUserRole(c.Request().Context(), claim.SubjectID, req.TargetID, next); err != nil {
		return err
	}
	metrics.RoleChangesTotal.WithLabelValues(string(next)).Inc()

	return c.NoContent(http.StatusNoContent)
}

type issuePromotionRequest struct {
	NextRole string `json:"next_role" validate:"required,oneof=USER ADMIN SUPER_ADMIN"`
}

type issuePromotionResponse struct {
	Token string `json:"token"`
}

// IssuePromotionToken mints a single-use promotion token. The token value is
// returned once and never again; delivering it to the promotee is the
// caller's responsibility.
//
// @Summary      Issue a promotion token
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issuePromotionRequest  true  "Escalation tier"
// @Success      201   {object}  issuePromotionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /roles/promotion-tokens [post]
func (h *RoleHandler) IssuePromotionToken(c echo.Context) error {
	claim, err := ctxClaim(c)
	if err != nil {
		return err
	}

	var req issuePromotionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.roleService.IssuePromotionToken(c.Request().Context(), claim.SubjectID, domain.Role(req.NextRole))
	if err != nil {
		return err
	}
	metrics.PromotionTokensIssuedTotal.Inc()

	return c.JSON(http.StatusCreated, issuePromotionResponse{Token: token})
}

type redeemPromotionRequest struct {
	Token    string `json:"token" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// RedeemPromotionToken consumes a promotion token and promotes the target.
// Any authenticated caller may redeem: the token itself is the delegated
// authority.
//
// @Summary      Redeem a promotion token
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  redeemPromotionRequest  true  "Token and target user"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /roles/promotion-tokens/redeem [post]
func (h *RoleHandler) RedeemPromotionToken(c echo.Context) error {
	if _, err := ctxClaim(c); err != nil {
		return err
	}

	var req redeemPromotionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.roleService.RedeemPromotionToken(c.Request().Context(), req.Token, req.TargetID); err != nil {
		metrics.PromotionRedemptionsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.PromotionRedemptionsTotal.WithLabelValues("success").Inc()

	return c.NoContent(http.StatusNoContent)
}

type roleChangeEntry struct {
	UserID       string `json:"user_id"`
	PreviousRole string `json:"previous_role"`
	NextRole     string `json:"next_role"`
	ChangedBy    string `json:"changed_by"`
	ChangedAt    int64  `json:"changed_at"`
}

// ListRoleChanges returns audit entries, newest first.
//
// @Summary      List role change audit records
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query     string  false  "Filter by target user"
// @Success      200      {array}   roleChangeEntry
// @Failure      403      {object}  map[string]string
// @Router       /roles/changes [get]
func (h *RoleHandler) ListRoleChanges(c echo.Context) error {
	if _, err := ctxClaim(c); err != nil {
		return err
	}

	const defaultLimit = 100
	records, err := h.roleService.RoleChanges(c.Request().Context(), c.QueryParam("user_id"), defaultLimit)
	if err != nil {
		return err
	}

	out := make([]roleChangeEntry, 0, len(records))
	for _, r := range records {
		out = append(out, roleChangeEntry{
			UserID:       r.UserID,
			PreviousRole: string(r.PreviousRole),
			NextRole:     string(r.NextRole),
			ChangedBy:    r.ChangedBy,
			ChangedAt:    r.ChangedAt.Unix(),
		})
	}
	return c.JSON(http.StatusOK, out)
}
