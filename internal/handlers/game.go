package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK    = "ok"
	statusReset = "reset"

	errResetGame = "failed to reset game"
	errListLogs  = "failed to load logs"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current score standing.
func (h *Handler) respondWithScore(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["score"] = h.services.Hunt.Score()
	c.JSON(http.StatusOK, resp)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Radar snapshot
// @Description  Current view of every active beacon. The beacon list is empty while a reset cooldown holds.
// @Tags         game
// @Produce      json
// @Success      200  {object}  models.RadarSnapshot
// @Router       /api/v1/radar [get]
func (h *Handler) getRadar(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Radar())
}

// @Summary      Score standing
// @Tags         game
// @Produce      json
// @Success      200  {object}  models.ScoreReport
// @Router       /api/v1/score [get]
func (h *Handler) getScore(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Hunt.Score())
}

// @Summary      Export hunt report
// @Description  Point-in-time result report served as a JSON download.
// @Tags         game
// @Produce      json
// @Success      200  {object}  models.HuntReport
// @Router       /api/v1/export [get]
func (h *Handler) exportReport(c *gin.Context) {
	rep := h.services.Export.Report()
	filename := fmt.Sprintf("hunt-report-%s.json", rep.GeneratedAt.UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, rep)
}

// @Summary      Reset game
// @Description  Abandons the running session, zeroes the score, and starts the discovery cooldown.
// @Tags         game
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, session_id, score"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/game/reset [post]
// @Security     BearerAuth
func (h *Handler) resetGame(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Hunt.Reset(ctx)
	if err != nil {
		// The in-memory reset may have applied even when persistence
		// failed; the operator retries once storage recovers.
		h.logAndJSONError(c, http.StatusInternalServerError, errResetGame, "game_reset_failed", err)
		return
	}
	h.respondWithScore(c, statusReset, gin.H{"session_id": st.SessionID})
}
