package handlers

import (
	"net/http"

	"github.com/osa911/userconsole/internal/api/dto/common"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/utils"
	"github.com/osa911/userconsole/internal/version"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	api    interfaces.UserAPI
	apiURL string
}

func NewHealthHandler(api interfaces.UserAPI, apiURL string) *HealthHandler {
	return &HealthHandler{api: api, apiURL: apiURL}
}

// Check reports healthy only when the users API answers
func (h *HealthHandler) Check(c *gin.Context) {
	active, err := h.api.ListActive(c.Request.Context())
	if err != nil {
		utils.HandleAPIError(c, err, http.StatusServiceUnavailable, common.ErrCodeUnavailable, "Users API is unreachable")
		return
	}

	utils.HandleSuccess(c, common.HealthData{
		Status:  "ok",
		API:     h.apiURL,
		Active:  len(active),
		Version: version.Version,
	})
}
