package wallet

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

type walletHandler struct {
	wallet *walletService
}

type Dependencies struct {
	Ledger      *escrow.GormLedger
	Hub         *ws.WebSocketNotificationHub
	Auth        gin.HandlerFunc
	AdminSecret string

	// Deposits are also consumed from DepositsSubscription when Pubsub is set.
	Pubsub               *pubsub.Client
	DepositsSubscription string
}

type DepositRequest struct {
	Amount    uint64 `json:"amount"`
	Reference string `json:"reference"`
}

func RegisterRoutesAndSubscriptions(ctx context.Context, rg *gin.RouterGroup, deps Dependencies) {
	handler := walletHandler{
		wallet: &walletService{ledger: deps.Ledger, hub: deps.Hub},
	}

	routes := rg.Group("/wallet")
	routes.GET("", deps.Auth, handler.getWallet)
	routes.POST("/:party/deposit", middleware.RequireAdmin(deps.AdminSecret), handler.deposit)

	if deps.Pubsub != nil && deps.DepositsSubscription != "" {
		go func() {
			_ = deps.Pubsub.Subscribe(ctx, pubsub.SubscriptionHandler{
				SubscriptionId: deps.DepositsSubscription,
				Handler:        handler.wallet.handleDepositMessage,
			})
			log.Info().Str("subscription", deps.DepositsSubscription).Msg("Deposit subscription stopped")
		}()
	}
}

func (h walletHandler) getWallet(c *gin.Context) {
	wallet, err := h.wallet.getWallet(c.Request.Context(), utils.GetPartyId(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

func (h walletHandler) deposit(c *gin.Context) {
	body := DepositRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BindProblem(err))
		return
	}

	party := c.Param("party")
	if err := h.wallet.deposit(c.Request.Context(), party, body.Amount, body.Reference); err != nil {
		problem := depositProblem(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	wallet, err := h.wallet.getWallet(c.Request.Context(), party)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, wallet)
}
