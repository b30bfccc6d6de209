package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/service"
)

type PackageController struct {
	packageService service.AdminPackageService
}

func NewPackageController(packageService service.AdminPackageService) *PackageController {
	return &PackageController{packageService: packageService}
}

// CreatePackage godoc
// @Summary (Admin) Create a new exam package
// @Description Admin publishes a package of existing questions with a fixed display order. Orders must be unique within the package.
// @Tags Admin - Packages
// @Accept json
// @Produce json
// @Param package_data body dto.CreatePackageRequest true "Package payload with question assignments"
// @Success 201 {object} dto.PackageResponseDTO "Package created"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/packages [post]
func (c *PackageController) CreatePackage(ctx *gin.Context) {
	var req dto.CreatePackageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreatePackage: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.packageService.CreatePackage(req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateOrder) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreatePackage: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create package"})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
