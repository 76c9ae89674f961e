package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type liveRequest struct {
	LiveID string `json:"live_id" form:"live_id"`
}

func (a *app) liveListHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	p, err := a.lives.List(c.Request.Context(), page)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "live streams fetched", p)
}

func (a *app) liveStartHandler(c *gin.Context) {
	var req liveRequest
	if !bind(c, &req) {
		return
	}
	actor := actorFromContext(c)
	s, err := a.lives.Start(c.Request.Context(), actor.ID, actor.Username, req.LiveID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "live stream started", s)
}

func (a *app) liveEndHandler(c *gin.Context) {
	var req liveRequest
	if !bind(c, &req) {
		return
	}
	s, err := a.lives.End(c.Request.Context(), actorFromContext(c).ID, req.LiveID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "live stream ended", s)
}

func (a *app) liveJoinHandler(c *gin.Context) {
	v, err := a.lives.Join(c.Request.Context(), c.Param("id"), actorFromContext(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "joined live stream", v)
}

func (a *app) liveLeaveHandler(c *gin.Context) {
	if err := a.lives.Leave(c.Request.Context(), c.Param("id"), actorFromContext(c).ID); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "left live stream", nil)
}

func (a *app) liveViewersHandler(c *gin.Context) {
	viewers, err := a.lives.Viewers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "viewers fetched", viewers)
}
