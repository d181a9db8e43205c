// internal/handlers/purchase.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/skytunes/skytunes-backend/internal/i18n"
	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) Record(c *gin.Context) {
	var req services.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	purchase, err := h.purchaseService.RecordPurchase(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "song")
			return
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			lang := utils.GetLangFromContext(c)
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPurchaseDuplicate))
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, purchase)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	userAddress := c.Query("user_address")

	purchases, total, err := h.purchaseService.ListPurchases(userAddress, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(purchases, total, params))
}

// CheckAccess reports whether an address has purchased a song. Streams never
// grant access, only purchase rows do.
func (h *PurchaseHandler) CheckAccess(c *gin.Context) {
	mint := c.Param("mint")
	address := c.Param("address")

	hasAccess, err := h.purchaseService.HasAccess(c.Request.Context(), mint, address)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"mint":       mint,
		"address":    address,
		"has_access": hasAccess,
	})
}
