package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"notevault/dto"
	"notevault/export"
	"notevault/middleware"
	"notevault/utils"

	"github.com/gin-gonic/gin"
)

// Reminder, version and export endpoints live on NoteHandler alongside
// the CRUD surface.

func (h *NoteHandler) SetReminder(c *gin.Context) {
	var req dto.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Reminder date is required")
		return
	}

	reminder, err := h.Notes.SetReminder(c.Request.Context(), c.Param("id"), c.GetString("userID"),
		req.ReminderDate, req.ReminderText)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("reminder")
	utils.OK(c, "Reminder added successfully", gin.H{"reminder": reminder})
}

func (h *NoteHandler) CompleteReminder(c *gin.Context) {
	if err := h.Notes.CompleteReminder(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("reminder")
	utils.OK(c, "Reminder marked as completed", nil)
}

func (h *NoteHandler) ListUpcomingReminders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reminders, err := h.Notes.ListUpcomingReminders(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{"reminders": reminders})
}

func (h *NoteHandler) SaveVersion(c *gin.Context) {
	versionID, err := h.Notes.SaveVersion(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("version")
	utils.OK(c, "Note version saved successfully", gin.H{"versionId": versionID})
}

func (h *NoteHandler) ListVersions(c *gin.Context) {
	title, versions, err := h.Notes.ListVersions(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OK(c, "", gin.H{
		"noteTitle": title,
		"versions":  versions,
	})
}

func (h *NoteHandler) RestoreVersion(c *gin.Context) {
	note, err := h.Notes.RestoreVersion(c.Request.Context(), c.Param("id"), c.GetString("userID"),
		c.Param("versionId"))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackNoteOperation("version")
	utils.OK(c, "Note restored to previous version", gin.H{"note": note})
}

func (h *NoteHandler) ExportMarkdown(c *gin.Context) {
	note, err := h.Notes.GetNote(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	result := export.Markdown(note)

	middleware.TrackNoteOperation("export")
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.MimeType, result.Data)
}

func (h *NoteHandler) ExportPDF(c *gin.Context) {
	note, err := h.Notes.GetNote(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := export.PDF(note)
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			log.Printf("pdf export unavailable: %v", err)
		} else {
			log.Printf("pdf export failed for note %s: %v", note.ID, err)
		}
		utils.InternalError(c, "Error exporting note to PDF")
		return
	}

	middleware.TrackNoteOperation("export")
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.MimeType, result.Data)
}
