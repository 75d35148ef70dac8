package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/identity"
)

const partyCtxKey string = "party"

func GetParty(ctx *gin.Context) identity.Party {
	party, _ := getCtxValue(partyCtxKey, ctx).(identity.Party)
	return party
}

func GetPartyId(ctx *gin.Context) string {
	return GetParty(ctx).Id
}

func SetPartyCtx(party identity.Party, ctx *gin.Context) {
	ctx.Set(partyCtxKey, party)
}

func getCtxValue(key string, ctx *gin.Context) any {
	value, exists := ctx.Get(key)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}
	return value
}
