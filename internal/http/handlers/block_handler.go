// Block HTTP handlers.
//
// This file exposes REST endpoints for the blocking registry:
//   - POST   /blocks       (block a user)
//   - DELETE /blocks/{id}  (unblock a user)
//   - GET    /blocks       (list blocked users)
//
// A block edge is directed, but its effect on messaging is symmetric: either
// direction of an edge between two users freezes chat creation and sending
// between them.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/domain"
)

//
// DTOs
//

// BlockRequest is the JSON payload for blocking a user.
type BlockRequest struct {
	// UserID is the user to block.
	UserID string `json:"user_id" binding:"required" example:"user456"`
}

// ListBlocksResponse wraps the caller's block list, newest first.
type ListBlocksResponse struct {
	Blocks []domain.BlockedUser `json:"blocks"`
}

//
// Handlers
//

// BlockUser godoc
// @ID          blockUser
// @Summary     Block a user
// @Description Records a block against the given user. Blocking an already blocked user is a no-op that refreshes the edge.
// @Tags        Blocks
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.BlockRequest  true  "Block payload"
//
// @Success     201  {object} domain.BlockedUser
// @Failure     400  {object} handlers.ErrorResponse "Bad request (e.g. self-block)"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /blocks [post]
func (h *Handlers) BlockUser(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required")
		return
	}

	b, err := h.blockSvc.Block(c.Request.Context(), userID(c), strings.TrimSpace(req.UserID))
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, b)
}

// UnblockUser godoc
// @ID          unblockUser
// @Summary     Unblock a user
// @Description Removes the caller's block against the given user. Unblocking a user who was never blocked returns 404.
// @Tags        Blocks
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Blocked user ID"  example(user456)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "No block found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /blocks/{id} [delete]
func (h *Handlers) UnblockUser(c *gin.Context) {
	blockedID := strings.TrimSpace(c.Param("id"))
	if blockedID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "blocked user id required")
		return
	}
	if err := h.blockSvc.Unblock(c.Request.Context(), userID(c), blockedID); err != nil {
		failService(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// ListBlocks godoc
// @ID          listBlocks
// @Summary     List blocked users
// @Description Returns the users the caller has blocked, newest first.
// @Tags        Blocks
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.ListBlocksResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /blocks [get]
func (h *Handlers) ListBlocks(c *gin.Context) {
	blocks, err := h.blockSvc.ListBlocked(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if blocks == nil {
		blocks = []domain.BlockedUser{}
	}
	ok(c, http.StatusOK, ListBlocksResponse{Blocks: blocks})
}
