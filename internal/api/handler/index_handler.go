package handler

import (
	"net/http"

	"customer-service/internal/api/handler/dto"
)

const (
	ServiceName    = "Customers Demo REST API Service"
	ServiceVersion = "1.0"
)

// Index handles GET /
// @Summary Service information
// @Tags Service
// @Produce json
// @Success 200 {object} dto.IndexResponse "Service name, version and customers collection URL"
// @Router / [get]
func Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.IndexResponse{
		Name:    ServiceName,
		Version: ServiceVersion,
		Paths:   baseURL(r) + "/customers",
	})
}
