package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scene-studio/internal/models"
	"scene-studio/internal/scenes"
)

// SceneHandler exposes the scene catalog.
type SceneHandler struct {
	catalog *scenes.Catalog
}

func NewSceneHandler(catalog *scenes.Catalog) *SceneHandler {
	return &SceneHandler{catalog: catalog}
}

// GetScenes lists the catalog. Metadata only, no state payloads; the
// browser grid just needs names and thumbnails.
func (h *SceneHandler) GetScenes(c *gin.Context) {
	list, err := h.catalog.GetAllScenes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scenes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GetScene returns one scene including its renderable state blob.
func (h *SceneHandler) GetScene(c *gin.Context) {
	sc, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scene not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        sc.ID,
		"name":      sc.Name,
		"thumbnail": sc.Thumbnail,
		"state":     h.catalog.LoadSceneState(sc),
	})
}

// SaveScene stores a snapshot. A name collision without update_existing
// comes back as 409 so the UI can offer "update" vs "save as new".
func (h *SceneHandler) SaveScene(c *gin.Context) {
	var input struct {
		ID             string          `json:"id"`
		Name           string          `json:"name" binding:"required"`
		State          json.RawMessage `json:"state" binding:"required"`
		Thumbnail      string          `json:"thumbnail"`
		UpdateExisting bool            `json:"update_existing"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc := &models.Scene{
		ID:        input.ID,
		Name:      input.Name,
		State:     string(input.State),
		Thumbnail: input.Thumbnail,
	}

	saved, err := h.catalog.Save(sc, input.UpdateExisting)
	if err != nil {
		if errors.Is(err, scenes.ErrNameConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "A scene with this name already exists",
				"conflict": true,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// DeleteScene removes a catalog entry. Sequences that referenced it now
// carry dangling references the validator will surface.
func (h *SceneHandler) DeleteScene(c *gin.Context) {
	if err := h.catalog.Delete(c.Param("id")); err != nil {
		if errors.Is(err, scenes.ErrSceneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scene not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete scene"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scene deleted successfully"})
}
