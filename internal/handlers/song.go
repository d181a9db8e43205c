// internal/handlers/song.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/skytunes/skytunes-backend/internal/i18n"
	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

type SongHandler struct {
	songService    *services.SongService
	storageService *services.StorageService
}

func NewSongHandler(songService *services.SongService, storageService *services.StorageService) *SongHandler {
	return &SongHandler{
		songService:    songService,
		storageService: storageService,
	}
}

func (h *SongHandler) Register(c *gin.Context) {
	var req services.RegisterSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	song, err := h.songService.RegisterSong(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			lang := utils.GetLangFromContext(c)
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeySongExists))
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, song)
}

func (h *SongHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	songs, total, err := h.songService.ListSongs(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(songs, total, params))
}

func (h *SongHandler) Get(c *gin.Context) {
	mint := c.Param("mint")

	song, err := h.songService.GetSong(c.Request.Context(), mint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "song")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, song)
}

func (h *SongHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileRequired), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadAudio(c.Request.Context(), file, header)
	if err != nil {
		if errors.Is(err, services.ErrFileTooLarge) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge), nil)
			return
		}
		if errors.Is(err, services.ErrUnsupportedType) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTypeUnsupported), nil)
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, result)
}
