package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/smartcv/searchpanel/internal/clients/brightdata"
	"github.com/smartcv/searchpanel/internal/entities"
	"github.com/smartcv/searchpanel/internal/repositories"
	"github.com/smartcv/searchpanel/internal/services"
)

type handlers struct {
	flow   *services.Flow
	poller *services.Poller
}

func (h *handlers) submitSearch(c *gin.Context) {

	var params entities.SearchParameters
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshotID, err := h.flow.Submit(c.Request.Context(), sessionID(c), params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": snapshotID,
		"message":     "Collection started, results are usually ready in 5-8 minutes",
	})
}

func (h *handlers) checkStatus(c *gin.Context) {

	display, err := h.flow.CheckStatus(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	if display.DisableAutoRefresh {
		h.poller.Stop(sessionID(c))
	}

	c.JSON(http.StatusOK, display)
}

type autoRefreshRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *handlers) setAutoRefresh(c *gin.Context) {

	var req autoRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := sessionID(c)
	if err := h.flow.SetAutoRefresh(id, *req.Enabled); err != nil {
		writeError(c, err)
		return
	}

	if *req.Enabled {
		h.poller.Start(id)
	} else {
		h.poller.Stop(id)
	}

	c.JSON(http.StatusOK, gin.H{"auto_refresh": *req.Enabled})
}

func (h *handlers) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.flow.SessionView(sessionID(c)))
}

func (h *handlers) getResults(c *gin.Context) {

	resultSet, err := h.flow.FetchResults(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": resultSet.SnapshotID,
		"count":       resultSet.Len(),
		"columns":     resultSet.Columns,
		"rows":        resultSet.Rows,
	})
}

func (h *handlers) downloadCSV(c *gin.Context) {

	filename, data, err := h.flow.ExportCSV(sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *handlers) handoff(c *gin.Context) {

	handoffURL, err := h.flow.HandoffURL(sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     handoffURL,
		"message": "Open the link to generate CVs for the collected jobs",
	})
}

func writeError(c *gin.Context, err error) {

	status := http.StatusBadRequest

	switch {
	case errors.Is(err, services.ErrNoActiveJob):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNotReady), errors.Is(err, services.ErrNoResults):
		status = http.StatusConflict
	case errors.Is(err, brightdata.ErrTransport), errors.Is(err, brightdata.ErrProtocol),
		errors.Is(err, repositories.ErrQuery):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
