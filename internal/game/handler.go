package game

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"gorm.io/gorm"
)

const statusFilterInvalid = "error.request.status-invalid"

type gameHandler struct {
	gameService gameService
}

type Dependencies struct {
	Db       *gorm.DB
	Machine  *morra.Machine
	Ledger   *escrow.GormLedger
	Auth     gin.HandlerFunc
	Notifier Notifier
}

func RegisterRoutes(rg *gin.RouterGroup, deps Dependencies) {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNotifier(nil, nil, "")
	}
	handler := gameHandler{
		gameService: gameService{
			db:       deps.Db,
			machine:  deps.Machine,
			ledger:   deps.Ledger,
			notifier: notifier,
		},
	}

	routes := rg.Group("/game", deps.Auth)
	routes.POST("", handler.createGame)
	routes.GET("", handler.getGames)
	routes.GET("/:id", handler.getGame)

	routes.POST("/:id/join", handler.joinGame)
	routes.POST("/:id/commitment", handler.submitCommitment)
	routes.POST("/:id/reveal", handler.reveal)
	routes.POST("/:id/claim", handler.claim)
	routes.POST("/:id/expire", handler.expire)
	routes.POST("/:id/cancel", handler.cancel)

	routes.GET("/:id/transfers", handler.getTransfers)
	routes.GET("/:id/audit", handler.getAudit)
	routes.GET("/:id/audit/:seq/proof", handler.getAuditProof)
}

func (gh *gameHandler) createGame(c *gin.Context) {
	body := CreateGameRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BindProblem(err))
		return
	}

	game, err := gh.gameService.createGame(c.Request.Context(), utils.GetPartyId(c), body)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (gh *gameHandler) joinGame(c *gin.Context) {
	body := JoinGameRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BindProblem(err))
		return
	}

	game, err := gh.gameService.joinGame(c.Request.Context(), c.Param("id"), utils.GetPartyId(c), body)
	respond(c, game, err)
}

func (gh *gameHandler) submitCommitment(c *gin.Context) {
	body := CommitmentRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BindProblem(err))
		return
	}

	game, err := gh.gameService.submitCommitment(c.Request.Context(), c.Param("id"), utils.GetPartyId(c), body)
	respond(c, game, err)
}

func (gh *gameHandler) reveal(c *gin.Context) {
	body := RevealRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BindProblem(err))
		return
	}

	game, err := gh.gameService.reveal(c.Request.Context(), c.Param("id"), utils.GetPartyId(c), body)
	respond(c, game, err)
}

func (gh *gameHandler) claim(c *gin.Context) {
	game, err := gh.gameService.claim(c.Request.Context(), c.Param("id"), utils.GetPartyId(c))
	respond(c, game, err)
}

func (gh *gameHandler) expire(c *gin.Context) {
	game, err := gh.gameService.expire(c.Request.Context(), c.Param("id"), utils.GetPartyId(c))
	respond(c, game, err)
}

func (gh *gameHandler) cancel(c *gin.Context) {
	game, err := gh.gameService.cancel(c.Request.Context(), c.Param("id"), utils.GetPartyId(c))
	respond(c, game, err)
}

func (gh *gameHandler) getGame(c *gin.Context) {
	game, err := gh.gameService.getGame(c.Request.Context(), c.Param("id"))
	respond(c, game, err)
}

// getGames lists open games by default. ?mine=true narrows the list to the
// caller's games and ?status=A,B picks the statuses to include.
func (gh *gameHandler) getGames(c *gin.Context) {
	page, err := utils.NewPageRequest(c)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	statuses, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	filter := gameFilter{
		party:    utils.GetPartyId(c),
		mine:     c.Query("mine") == "true",
		statuses: statuses,
	}
	games, gamesCount, err := gh.gameService.getGames(c.Request.Context(), page, filter)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	response := utils.NewPageResponse[GameResponse]().
		WithItems(games).
		WithItemCount(gamesCount).
		WithPage(page).
		Build()

	c.JSON(http.StatusOK, response)
}

func (gh *gameHandler) getTransfers(c *gin.Context) {
	transfers, err := gh.gameService.getTransfers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, transfers)
}

func (gh *gameHandler) getAudit(c *gin.Context) {
	auditLog, err := gh.gameService.getAudit(c.Request.Context(), c.Param("id"))
	respond(c, auditLog, err)
}

func (gh *gameHandler) getAuditProof(c *gin.Context) {
	seq, parseErr := strconv.ParseUint(c.Param("seq"), 10, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	proof, err := gh.gameService.getAuditProof(c.Request.Context(), c.Param("id"), seq)
	respond(c, proof, err)
}

func respond[T any](c *gin.Context, body *T, err *reject.ProblemWithTrace) {
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.JSON(http.StatusOK, body)
}

func parseStatusFilter(value string) ([]model.GameStatus, *reject.ProblemWithTrace) {
	if strings.TrimSpace(value) == "" {
		return model.OpenStatuses(), nil
	}

	statuses := []model.GameStatus{}
	for _, part := range strings.Split(value, ",") {
		status := model.GameStatus(strings.ToUpper(strings.TrimSpace(part)))
		if status.Rank() < 0 {
			return nil, &reject.ProblemWithTrace{
				Problem: reject.NewProblem().
					WithTitle("Unknown game status").
					WithStatus(http.StatusBadRequest).
					WithCode(statusFilterInvalid).
					WithParam("status", part).
					Build(),
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
