package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"scene-studio/internal/player"
	"scene-studio/internal/scenes"
	"scene-studio/internal/sequence"
)

// SequenceHandler exposes sequence CRUD, item editing and import/export.
// Reorder and item deletion route through the player so the playback
// cursor is corrected in the same step as the list mutation.
type SequenceHandler struct {
	store   *sequence.Store
	catalog *scenes.Catalog
	sched   *player.Scheduler
}

func NewSequenceHandler(store *sequence.Store, catalog *scenes.Catalog, sched *player.Scheduler) *SequenceHandler {
	return &SequenceHandler{store: store, catalog: catalog, sched: sched}
}

// GetSequences lists all sequences.
func (h *SequenceHandler) GetSequences(c *gin.Context) {
	list, err := h.store.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sequences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GetSequence fetches one sequence.
func (h *SequenceHandler) GetSequence(c *gin.Context) {
	seq, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}
	c.JSON(http.StatusOK, seq)
}

// CreateSequence makes a new empty sequence.
func (h *SequenceHandler) CreateSequence(c *gin.Context) {
	var input struct {
		Name             string `json:"name" binding:"required"`
		BackgroundColour string `json:"background_colour"`
		DefaultFadeType  string `json:"default_fade_type"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seq, err := h.store.Create(input.Name, input.BackgroundColour, input.DefaultFadeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sequence"})
		return
	}
	c.JSON(http.StatusCreated, seq)
}

// UpdateSequence edits sequence metadata.
func (h *SequenceHandler) UpdateSequence(c *gin.Context) {
	seq, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}

	var input struct {
		Name             string `json:"name"`
		BackgroundColour string `json:"background_colour"`
		DefaultFadeType  string `json:"default_fade_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != "" {
		seq.Name = input.Name
	}
	if input.BackgroundColour != "" {
		seq.BackgroundColour = input.BackgroundColour
	}
	if input.DefaultFadeType != "" {
		seq.DefaultFadeType = input.DefaultFadeType
	}

	if err := h.store.Save(seq); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sequence"})
		return
	}
	c.JSON(http.StatusOK, seq)
}

// DeleteSequence removes a sequence; if it was playing the player stops.
func (h *SequenceHandler) DeleteSequence(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, sequence.ErrSequenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sequence"})
		return
	}

	if h.sched.Status().SequenceID == id {
		h.sched.Stop()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sequence deleted successfully"})
}

// AddItem appends a scene reference to the playback order.
func (h *SequenceHandler) AddItem(c *gin.Context) {
	seq, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}

	var input struct {
		SceneID string `json:"scene_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.AddItem(seq, input.SceneID)
	if err != nil {
		if errors.Is(err, sequence.ErrNoScenesAvailable) {
			// The UI greys the button out; this is the backstop.
			c.JSON(http.StatusConflict, gin.H{"error": "No scenes available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem patches one item. A no-op patch persists nothing and reports
// changed=false.
func (h *SequenceHandler) UpdateItem(c *gin.Context) {
	seq, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}

	var patch sequence.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed, err := h.store.UpdateItem(seq, c.Param("itemId"), patch)
	if err != nil {
		if errors.Is(err, sequence.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "sequence": seq})
}

// DeleteItem removes one item, via the player for cursor safety.
func (h *SequenceHandler) DeleteItem(c *gin.Context) {
	h.sched.Select(c.Param("id"))
	if err := h.sched.DeleteItem(c.Param("itemId")); err != nil {
		if errors.Is(err, sequence.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// ReorderItems applies a drag-and-drop move.
func (h *SequenceHandler) ReorderItems(c *gin.Context) {
	var input struct {
		From *int `json:"from" binding:"required"`
		To   *int `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reorder payload"})
		return
	}

	h.sched.Select(c.Param("id"))
	if err := h.sched.Reorder(*input.From, *input.To); err != nil {
		switch {
		case errors.Is(err, sequence.ErrBadIndex):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reorder index out of range"})
		case errors.Is(err, sequence.ErrSequenceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder items"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reordered"})
}

// ValidateSequence reports dangling scene references for the warning banner.
func (h *SequenceHandler) ValidateSequence(c *gin.Context) {
	seq, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}
	catalog, err := h.catalog.GetAllScenes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scenes"})
		return
	}
	c.JSON(http.StatusOK, sequence.Validate(seq, catalog))
}

// ExportSequence streams the sequence as a pretty-printed JSON download.
func (h *SequenceHandler) ExportSequence(c *gin.Context) {
	data, err := h.store.Export(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"sequence-"+c.Param("id")+".json\"")
	c.Data(http.StatusOK, "application/json", data)
}

// ImportSequence accepts a sequence JSON file (either schema vintage) and
// stores it under a fresh id. Malformed payloads abort atomically.
func (h *SequenceHandler) ImportSequence(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read import payload"})
		return
	}

	seq, err := h.store.Import(data)
	if err != nil {
		if errors.Is(err, sequence.ErrMalformedImport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Import failed: " + err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import sequence"})
		return
	}
	c.JSON(http.StatusCreated, seq)
}
