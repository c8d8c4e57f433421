package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/history"
)

// DesignHistory is the editing surface of the history engine.
type DesignHistory interface {
	State() entities.Design
	Apply(ctx context.Context, change history.Change) (entities.Design, error)
	Flush()
	Pending(g history.Group) bool
	Versions() []entities.DesignVersion
	Pointer() int
	Restore(index int) bool
	Undo() bool
	Redo() bool
}

type DesignController struct {
	history DesignHistory
}

func NewDesignController(h DesignHistory) *DesignController {
	return &DesignController{history: h}
}

// DesignResponse is the live design plus the groups still waiting to commit.
type DesignResponse struct {
	Design  entities.Design `json:"design"`
	Pending []history.Group `json:"pending"`
}

// HistoryResponse lists snapshots oldest first.
type HistoryResponse struct {
	Versions []entities.DesignVersion `json:"versions"`
	Pointer  int                      `json:"pointer"`
	CanUndo  bool                     `json:"canUndo"`
	CanRedo  bool                     `json:"canRedo"`
}

// GetDesign handles GET /api/design
func (dc *DesignController) GetDesign(c *gin.Context) {
	c.JSON(http.StatusOK, dc.designResponse(dc.history.State()))
}

// UpdateDesign handles PATCH /api/design
// The body is a partial design grouped by property: text, card, icon, font,
// layout. Only the fields present are changed.
func (dc *DesignController) UpdateDesign(c *gin.Context) {
	var change history.Change
	if err := c.ShouldBindJSON(&change); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(change.Groups()) == 0 {
		respondBadRequest(c, "no design fields in request")
		return
	}

	design, err := dc.history.Apply(c.Request.Context(), change)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, dc.designResponse(design))
}

// CommitDesign handles POST /api/design/commit
// Commits pending edits without waiting for their quiet period.
func (dc *DesignController) CommitDesign(c *gin.Context) {
	dc.history.Flush()
	c.JSON(http.StatusOK, dc.historyResponse())
}

// GetHistory handles GET /api/history
func (dc *DesignController) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, dc.historyResponse())
}

// Restore handles POST /api/history/:index/restore
func (dc *DesignController) Restore(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}
	if !dc.history.Restore(index) {
		respondNotFound(c, "version")
		return
	}
	dc.respondRestored(c)
}

// Undo handles POST /api/history/undo
func (dc *DesignController) Undo(c *gin.Context) {
	if !dc.history.Undo() {
		respondErrorCode(c, http.StatusConflict, "nothing_to_undo", "nothing to undo")
		return
	}
	dc.respondRestored(c)
}

// Redo handles POST /api/history/redo
func (dc *DesignController) Redo(c *gin.Context) {
	if !dc.history.Redo() {
		respondErrorCode(c, http.StatusConflict, "nothing_to_redo", "nothing to redo")
		return
	}
	dc.respondRestored(c)
}

func (dc *DesignController) respondRestored(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"design":  dc.history.State(),
		"pointer": dc.history.Pointer(),
	})
}

func (dc *DesignController) designResponse(d entities.Design) DesignResponse {
	pending := []history.Group{}
	for _, g := range history.Groups {
		if dc.history.Pending(g) {
			pending = append(pending, g)
		}
	}
	return DesignResponse{Design: d, Pending: pending}
}

func (dc *DesignController) historyResponse() HistoryResponse {
	versions := dc.history.Versions()
	pointer := dc.history.Pointer()
	if versions == nil {
		versions = []entities.DesignVersion{}
	}
	return HistoryResponse{
		Versions: versions,
		Pointer:  pointer,
		CanUndo:  pointer > 0,
		CanRedo:  pointer >= 0 && pointer < len(versions)-1,
	}
}
