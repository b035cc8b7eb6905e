package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/pkg/response"
)

// CenterHandler serves the static center catalog.
type CenterHandler struct{}

// NewCenterHandler constructs handler.
func NewCenterHandler() *CenterHandler {
	return &CenterHandler{}
}

// List godoc
// @Summary List centers
// @Tags Centers
// @Produce json
// @Param cityCode query string false "MDA or NGP"
// @Success 200 {object} response.Envelope
// @Router /centers [get]
func (h *CenterHandler) List(c *gin.Context) {
	city := strings.ToUpper(strings.TrimSpace(c.Query("cityCode")))
	if city == "" {
		response.JSON(c, http.StatusOK, models.Centers)
		return
	}
	response.JSON(c, http.StatusOK, models.CentersForCity(models.CityCode(city)))
}
