package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *app) walletHandler(c *gin.Context) {
	w, err := a.wallets.ForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "wallet fetched", w)
}

func (a *app) coinListHandler(c *gin.Context) {
	coins, err := a.coins.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "coin list fetched", coins)
}
