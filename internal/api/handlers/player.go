package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scene-studio/internal/player"
)

// PlayerHandler maps the transport bar onto the playback scheduler.
// Commands either succeed or degrade to a safe no-op; nothing here can
// take the server down.
type PlayerHandler struct {
	sched *player.Scheduler
	feed  *player.Feed
}

func NewPlayerHandler(sched *player.Scheduler, feed *player.Feed) *PlayerHandler {
	return &PlayerHandler{sched: sched, feed: feed}
}

// CurrentScene returns the last scene blob the scheduler emitted. The
// renderer polls this and reloads when seq changes.
func (h *PlayerHandler) CurrentScene(c *gin.Context) {
	blob, seq := h.feed.Current()
	c.JSON(http.StatusOK, gin.H{"seq": seq, "state": blob})
}

// Status returns the cursor snapshot for the transport bar.
func (h *PlayerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.sched.Status())
}

// SelectSequence changes which sequence the UI is viewing. Playback of a
// different sequence is not hijacked (see the scheduler's switch guard).
func (h *PlayerHandler) SelectSequence(c *gin.Context) {
	var input struct {
		SequenceID string `json:"sequence_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.sched.Select(input.SequenceID)
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *PlayerHandler) Play(c *gin.Context) {
	h.sched.Play()
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *PlayerHandler) Pause(c *gin.Context) {
	h.sched.Pause()
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *PlayerHandler) Stop(c *gin.Context) {
	h.sched.Stop()
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *PlayerHandler) Next(c *gin.Context) {
	h.sched.Next()
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *PlayerHandler) Previous(c *gin.Context) {
	h.sched.Previous()
	c.JSON(http.StatusOK, h.sched.Status())
}

// Jump points the cursor at an explicit item index (scene click in the
// sequence editor).
func (h *PlayerHandler) Jump(c *gin.Context) {
	var input struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.sched.JumpTo(*input.Index)
	c.JSON(http.StatusOK, h.sched.Status())
}
