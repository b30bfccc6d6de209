package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/service"
)

type ReconcileController struct {
	reconcileService service.ReconcileService
}

func NewReconcileController(reconcileService service.ReconcileService) *ReconcileController {
	return &ReconcileController{reconcileService: reconcileService}
}

// TriggerReconciliation godoc
// @Summary (Admin) Rebuild all user stats from raw history
// @Description Runs the same full recomputation the scheduled job performs. Safe to run at any time; the result replaces the incremental rollups.
// @Tags Admin - Maintenance
// @Produce json
// @Success 200 {object} dto.ReconcileResultDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/reconcile [post]
func (c *ReconcileController) TriggerReconciliation(ctx *gin.Context) {
	result, err := c.reconcileService.Run(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Admin TriggerReconciliation: Run failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Reconciliation failed"})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
