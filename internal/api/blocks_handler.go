package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"runcoach/coaching-app/internal/blocks"
)

// BlocksHandler serves the live totals and starter shapes of the block editor.
// It is stateless; nothing here touches storage.
type BlocksHandler struct{}

func NewBlocksHandler() *BlocksHandler {
	return &BlocksHandler{}
}

type BlocksRequest struct {
	Blocks []blocks.Block `json:"blocks"`
}

type BlocksSummaryResponse struct {
	Blocks  []blocks.Block   `json:"blocks"`
	Summary blocks.Summary   `json:"summary"`
	Profile []blocks.Segment `json:"profile"`
}

// Summary godoc
// @Summary Estimate totals for an unsaved block tree
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BlocksRequest true "Blocks"
// @Success 200 {object} BlocksSummaryResponse
// @Failure 400 {object} gin.H "Tree expands past the step limit"
// @Router /blocks/summary [post]
func (h *BlocksHandler) Summary(c *gin.Context) {
	var req BlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	normalized := blocks.Normalize(req.Blocks)
	if err := blocks.CheckSize(normalized); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if normalized == nil {
		normalized = []blocks.Block{}
	}
	profile := blocks.Profile(normalized)
	if profile == nil {
		profile = []blocks.Segment{}
	}
	c.JSON(http.StatusOK, BlocksSummaryResponse{
		Blocks:  normalized,
		Summary: blocks.Summarize(normalized),
		Profile: profile,
	})
}

func (h *BlocksHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"leaf":    blocks.NewLeaf(),
		"repeat":  blocks.NewRepeat(),
		"workout": blocks.DefaultWorkoutBlocks(),
	})
}
