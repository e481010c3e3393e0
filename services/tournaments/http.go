package tournaments

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

// Tournaments is the interface for the bracket lifecycle service.
type Tournaments interface {
	Create(ctx context.Context, caller auth.Identity, request CreateTournamentRequest) (*Tournament, error)
	Get(ctx context.Context, tournamentID string) (*Tournament, error)
	Register(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error)
	Start(ctx context.Context, caller auth.Identity, tournamentID string, request StartTournamentRequest) (*Tournament, error)
	Vote(ctx context.Context, caller auth.Identity, tournamentID string, request VoteMatchRequest) (*Tournament, error)
	Advance(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error)
	Cancel(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error)
	Leaderboard(ctx context.Context, tournamentID string) ([]LeaderboardEntry, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Tournaments

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("", h.createHandler)
	r.GET("/:tournament_id", h.getHandler)
	r.GET("/:tournament_id/leaderboard", h.leaderboardHandler)
	r.POST("/:tournament_id/register", h.registerHandler)
	r.POST("/:tournament_id/start", h.startHandler)
	r.POST("/:tournament_id/vote", h.voteHandler)
	r.POST("/:tournament_id/advance", h.advanceHandler)
	r.POST("/:tournament_id/cancel", h.cancelHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreateTournamentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	tournament, err := h.Service.Create(c, auth.IdentityFrom(c), request)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tournamentId": tournament.ID})
}

func (h *httpHandler) getHandler(c *gin.Context) {
	tournament, err := h.Service.Get(c, c.Param("tournament_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, tournament)
}

func (h *httpHandler) leaderboardHandler(c *gin.Context) {
	leaderboard, err := h.Service.Leaderboard(c, c.Param("tournament_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
}

func (h *httpHandler) registerHandler(c *gin.Context) {
	tournament, err := h.Service.Register(c, auth.IdentityFrom(c), c.Param("tournament_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       tournament.Status,
		"participants": len(tournament.Participants),
	})
}

func (h *httpHandler) startHandler(c *gin.Context) {
	var request StartTournamentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
	}

	tournament, err := h.Service.Start(c, auth.IdentityFrom(c), c.Param("tournament_id"), request)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, tournament)
}

func (h *httpHandler) voteHandler(c *gin.Context) {
	var request VoteMatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	tournament, err := h.Service.Vote(c, auth.IdentityFrom(c), c.Param("tournament_id"), request)
	if err != nil {
		abortWith(c, err)
		return
	}

	match := tournament.findMatch(request.MatchID)
	c.JSON(http.StatusOK, gin.H{
		"matchId": match.MatchID,
		"score1":  match.Score1,
		"score2":  match.Score2,
	})
}

func (h *httpHandler) advanceHandler(c *gin.Context) {
	tournament, err := h.Service.Advance(c, auth.IdentityFrom(c), c.Param("tournament_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   tournament.Status,
		"rounds":   len(tournament.Brackets),
		"winnerId": tournament.WinnerID,
	})
}

func (h *httpHandler) cancelHandler(c *gin.Context) {
	tournament, err := h.Service.Cancel(c, auth.IdentityFrom(c), c.Param("tournament_id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": tournament.Status})
}

func abortWith(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Reason(err),
		"kind":  string(apperr.KindOf(err)),
	})
	c.Abort()
}
