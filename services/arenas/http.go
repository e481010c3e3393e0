package arenas

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agoralive/debate-engine/pkg/apperr"
	"github.com/agoralive/debate-engine/pkg/auth"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Arenas is the interface for the arena lifecycle service.
type Arenas interface {
	Create(ctx context.Context, caller auth.Identity, request CreateArenaRequest) (*Arena, string, error)
	Get(ctx context.Context, arenaID string) (*Arena, error)
	Join(ctx context.Context, caller auth.Identity, arenaID, inviteCode string) (*Arena, error)
	Start(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error)
	SubmitArgument(ctx context.Context, caller auth.Identity, arenaID string, request SubmitArgumentRequest) (*Arena, error)
	Vote(ctx context.Context, caller auth.Identity, arenaID string, request VoteArgumentRequest) (*Arena, error)
	CloseRound(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error)
	Cancel(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Arenas

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("", h.createHandler)
	r.GET("/:arena_id", h.getHandler)
	r.POST("/:arena_id/join", h.joinHandler)
	r.POST("/:arena_id/start", h.startHandler)
	r.POST("/:arena_id/argument", h.argumentHandler)
	r.POST("/:arena_id/vote", h.voteHandler)
	r.POST("/:arena_id/close-round", h.closeRoundHandler)
	r.POST("/:arena_id/cancel", h.cancelHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreateArenaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	arena, inviteCode, err := h.Service.Create(c, auth.IdentityFrom(c), request)
	if err != nil {
		abortWith(c, err)
		return
	}

	response := gin.H{"arenaId": arena.ID}
	if inviteCode != "" {
		response["inviteCode"] = inviteCode
	}
	c.JSON(http.StatusCreated, response)
}

func (h *httpHandler) getHandler(c *gin.Context) {
	arena, err := h.Service.Get(c, c.Param("arena_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, arena)
}

func (h *httpHandler) joinHandler(c *gin.Context) {
	var request JoinArenaRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
	}

	arena, err := h.Service.Join(c, auth.IdentityFrom(c), c.Param("arena_id"), request.InviteCode)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, arena)
}

func (h *httpHandler) startHandler(c *gin.Context) {
	arena, err := h.Service.Start(c, auth.IdentityFrom(c), c.Param("arena_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, arena)
}

func (h *httpHandler) argumentHandler(c *gin.Context) {
	var request SubmitArgumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	arena, err := h.Service.SubmitArgument(c, auth.IdentityFrom(c), c.Param("arena_id"), request)
	if err != nil {
		abortWith(c, err)
		return
	}

	round := arena.Rounds[arena.CurrentRound-1]
	argument := round.Arguments[len(round.Arguments)-1]
	c.JSON(http.StatusOK, gin.H{
		"roundNumber":   round.RoundNumber,
		"argumentIndex": len(round.Arguments) - 1,
		"fallacies":     argument.Fallacies,
	})
}

func (h *httpHandler) voteHandler(c *gin.Context) {
	var request VoteArgumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	arena, err := h.Service.Vote(c, auth.IdentityFrom(c), c.Param("arena_id"), request)
	if err != nil {
		abortWith(c, err)
		return
	}

	argument := arena.Rounds[request.RoundNumber-1].Arguments[*request.ArgumentIndex]
	c.JSON(http.StatusOK, gin.H{"votes": argument.Votes})
}

func (h *httpHandler) closeRoundHandler(c *gin.Context) {
	arena, err := h.Service.CloseRound(c, auth.IdentityFrom(c), c.Param("arena_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       arena.Status,
		"currentRound": arena.CurrentRound,
		"winnerId":     arena.WinnerID,
	})
}

func (h *httpHandler) cancelHandler(c *gin.Context) {
	arena, err := h.Service.Cancel(c, auth.IdentityFrom(c), c.Param("arena_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": arena.Status})
}

func abortWith(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Reason(err),
		"kind":  string(apperr.KindOf(err)),
	})
	c.Abort()
}
