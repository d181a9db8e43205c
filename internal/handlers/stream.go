// internal/handlers/stream.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/skytunes/skytunes-backend/internal/i18n"
	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

type StreamHandler struct {
	streamService *services.StreamService
}

func NewStreamHandler(streamService *services.StreamService) *StreamHandler {
	return &StreamHandler{streamService: streamService}
}

// Record accepts client-confirmed streams, the fallback path when a play is
// not funded by an on-chain transfer. Webhook-observed streams take the
// ingestion path instead.
func (h *StreamHandler) Record(c *gin.Context) {
	var req services.RecordStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	log, err := h.streamService.RecordStream(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "song")
			return
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			lang := utils.GetLangFromContext(c)
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyStreamDuplicate))
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, log)
}

func (h *StreamHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	mint := c.Query("mint")

	logs, total, err := h.streamService.ListStreams(mint, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
