package handler

import (
	"strconv"

	"notevault/dto"
	"notevault/middleware"
	"notevault/usecase"
	"notevault/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	Notes *usecase.NoteService
}

func NewNoteHandler(notes *usecase.NoteService) *NoteHandler {
	return &NoteHandler{Notes: notes}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.Notes.CreateNote(c.Request.Context(), c.GetString("userID"), req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("create")
	utils.Created(c, "Note created successfully", gin.H{"note": note})
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	page, limit := pageParams(c)
	search := c.Query("search")

	notes, total, err := h.Notes.ListNotes(c.Request.Context(), c.GetString("userID"), search, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{
		"notes":      notes,
		"pagination": dto.NewPagination(total, page, limit),
	})
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	note, err := h.Notes.GetNote(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{"note": note})
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.Notes.UpdateNote(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("update")
	utils.OK(c, "Note updated successfully", gin.H{"note": note})
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	if err := h.Notes.DeleteNote(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("delete")
	utils.OK(c, "Note deleted successfully", nil)
}

func (h *NoteHandler) DeleteNotes(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Please provide an array of note IDs")
		return
	}

	deleted, err := h.Notes.DeleteNotes(c.Request.Context(), c.GetString("userID"), req.NoteIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("delete")
	utils.OK(c, strconv.FormatInt(deleted, 10)+" notes deleted successfully", gin.H{
		"deletedCount": deleted,
	})
}

func (h *NoteHandler) AddTags(c *gin.Context) {
	var req dto.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Tags must be provided as an array")
		return
	}

	note, err := h.Notes.AddTags(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("tag")
	utils.OK(c, "Tags added successfully", gin.H{"note": note})
}

func (h *NoteHandler) RemoveTags(c *gin.Context) {
	var req dto.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Tags must be provided as an array")
		return
	}

	note, err := h.Notes.RemoveTags(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("tag")
	utils.OK(c, "Tags removed successfully", gin.H{"note": note})
}

func (h *NoteHandler) ListNotesByTag(c *gin.Context) {
	page, limit := pageParams(c)

	notes, total, err := h.Notes.ListNotesByTag(c.Request.Context(), c.GetString("userID"), c.Param("tag"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{
		"notes":      notes,
		"pagination": dto.NewPagination(total, page, limit),
	})
}

func (h *NoteHandler) ListTags(c *gin.Context) {
	tags, err := h.Notes.ListTags(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{"tags": tags})
}

func (h *NoteHandler) TogglePin(c *gin.Context) {
	note, err := h.Notes.TogglePin(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Note unpinned successfully"
	if note.IsPinned {
		message = "Note pinned successfully"
	}

	middleware.TrackNoteOperation("pin")
	utils.OK(c, message, gin.H{"note": note})
}

func (h *NoteHandler) ToggleFavorite(c *gin.Context) {
	note, err := h.Notes.ToggleFavorite(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Note removed from favorites"
	if note.IsFavorite {
		message = "Note added to favorites"
	}

	middleware.TrackNoteOperation("favorite")
	utils.OK(c, message, gin.H{"note": note})
}

func (h *NoteHandler) ListPinnedNotes(c *gin.Context) {
	notes, err := h.Notes.ListPinnedNotes(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{"notes": notes})
}

func (h *NoteHandler) ListFavoriteNotes(c *gin.Context) {
	notes, err := h.Notes.ListFavoriteNotes(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{"notes": notes})
}
