package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TurnIfCode/backend-gogo/pkg/topup"
)

func (a *app) createTopupHandler(c *gin.Context) {
	var req struct {
		WalletID   string     `json:"wallet_id" form:"wallet_id"`
		CoinAmount flexString `json:"coin_amount" form:"coin_amount"`
		Price      flexString `json:"price" form:"price"`
	}
	if !bind(c, &req) {
		return
	}
	t, err := a.topups.Create(c.Request.Context(), actorFromContext(c), topup.CreateInput{
		WalletID:   req.WalletID,
		CoinAmount: string(req.CoinAmount),
		Price:      string(req.Price),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "topup transaction created", t)
}

func (a *app) listTopupHandler(c *gin.Context) {
	rows, err := a.topups.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "topup transactions fetched", rows)
}

func (a *app) cancelTopupHandler(c *gin.Context) {
	t, err := a.topups.Cancel(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "topup transaction cancelled", t)
}

func (a *app) uploadTopupProofHandler(c *gin.Context) {
	var req struct {
		BankName      string `json:"bank_name" form:"bank_name"`
		AccountNumber string `json:"account_number" form:"account_number"`
		Image         string `json:"image" form:"image"`
	}
	if !bind(c, &req) {
		return
	}
	t, err := a.topups.UploadProof(c.Request.Context(), actorFromContext(c), c.Param("id"), topup.ProofInput{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Image:         req.Image,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "topup details uploaded", t)
}

func (a *app) approveTopupHandler(c *gin.Context) {
	t, err := a.topups.Approve(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "topup transaction approved", t)
}
