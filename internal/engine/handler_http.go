package engine

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"

	citizenapp "WorldRepublic/internal/citizen/app"
	partyapp "WorldRepublic/internal/party/app"
	shoutapp "WorldRepublic/internal/shout/app"
	"WorldRepublic/internal/shared/security"
	"WorldRepublic/internal/shared/transport"
	"WorldRepublic/internal/shared/transport/http/middleware"
	"WorldRepublic/internal/shared/transport/ws"
	"WorldRepublic/internal/shared/utils"
	"WorldRepublic/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const feedLimit = 50

// HttpHandler 把引擎挂到 gin 路由上：
// - /api/action 动作闭集入口（经 actor 串行化）
// - /api/* 动作闭集之外的注册、政党、动态流
// - /internal/* 定时任务触发（共享口令）
// - /ws 告警推送通道
type HttpHandler struct {
	runtime  *Runtime
	citizens *citizenapp.CitizenService
	parties  *partyapp.PartyService
	shouts   *shoutapp.ShoutService
	batch    *BatchRunner
	hub      *ws.Hub
	log      logx.Logger
}

func NewHttpHandler(runtime *Runtime, citizens *citizenapp.CitizenService, parties *partyapp.PartyService, shouts *shoutapp.ShoutService, batch *BatchRunner, hub *ws.Hub, log logx.Logger) *HttpHandler {
	return &HttpHandler{
		runtime:  runtime,
		citizens: citizens,
		parties:  parties,
		shouts:   shouts,
		batch:    batch,
		hub:      hub,
		log:      log,
	}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/api/register", h.Register)

	authed := group.Group("", middleware.Auth())
	authed.POST("/api/action", h.Action)
	authed.GET("/api/me", h.Me)
	authed.GET("/api/feed", h.Feed)
	authed.POST("/api/shout", h.Shout)
	authed.POST("/api/party/join", h.JoinParty)
	authed.POST("/api/party/leave", h.LeaveParty)
	authed.GET("/ws", h.Attach)

	internal := group.Group("/internal", middleware.ResolverSecret())
	internal.POST("/resolve", h.batch.Resolve)
	internal.POST("/close-elections", h.batch.CloseElections)
	internal.POST("/sweep-laws", h.batch.SweepLaws)
}

// Action 动作闭集的统一入口。
func (h *HttpHandler) Action(c *gin.Context) {
	var req struct {
		Action Action          `json:"action"`
		Data   json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	uid := c.GetString(middleware.CtxKeyUid)
	res := h.runtime.Execute(c.Request.Context(), uid, req.Action, req.Data)
	c.JSON(nethttp.StatusOK, res)
}

// Register 注册新公民并签发 token（唯一不走认证的写入口）。
func (h *HttpHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Country  string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Country == "" {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	rawID, err := utils.NextSnowflakeID()
	if err != nil {
		h.fail(c, transport.SystemError, "internal error")
		return
	}
	uid := strconv.FormatInt(rawID, 10)

	citizen, err := h.citizens.Register(c.Request.Context(), uid, req.Username, req.Country)
	if err != nil {
		h.error(c, err)
		return
	}

	token, err := security.Award(citizen.ID)
	if err != nil {
		h.log.Error("token award failed", zap.String("uid", citizen.ID), zap.Error(err))
		h.fail(c, transport.SystemError, "internal error")
		return
	}
	h.ok(c, gin.H{"uid": citizen.ID, "token": token})
}

// Me 返回公民自己的文档视图。
func (h *HttpHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxKeyUid)
	citizen, err := h.citizens.Get(c.Request.Context(), uid)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, citizen)
}

// Feed 返回公民订阅作者的动态流。
func (h *HttpHandler) Feed(c *gin.Context) {
	uid := c.GetString(middleware.CtxKeyUid)
	citizen, err := h.citizens.Get(c.Request.Context(), uid)
	if err != nil {
		h.error(c, err)
		return
	}
	shouts, err := h.shouts.Feed(c.Request.Context(), citizen.Subscriptions, feedLimit)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, shouts)
}

// Shout 发布一条动态。
func (h *HttpHandler) Shout(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	uid := c.GetString(middleware.CtxKeyUid)
	sh, err := h.shouts.Post(c.Request.Context(), uid, req.Message)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, gin.H{"shout_id": sh.ID})
}

func (h *HttpHandler) JoinParty(c *gin.Context) {
	h.partyMove(c, true)
}

func (h *HttpHandler) LeaveParty(c *gin.Context) {
	h.partyMove(c, false)
}

func (h *HttpHandler) partyMove(c *gin.Context, join bool) {
	var req struct {
		Party string `json:"party"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Party == "" {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	uid := c.GetString(middleware.CtxKeyUid)
	var err error
	if join {
		err = h.parties.Join(c.Request.Context(), uid, req.Party)
	} else {
		err = h.parties.Leave(c.Request.Context(), uid, req.Party)
	}
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, nil)
}

// Attach 升级为告警推送连接。
func (h *HttpHandler) Attach(c *gin.Context) {
	uid := c.GetString(middleware.CtxKeyUid)
	if err := h.hub.Attach(c.Writer, c.Request, uid); err != nil {
		h.log.Warn("ws attach failed", zap.String("uid", uid), zap.Error(err))
	}
}

func (h *HttpHandler) ok(c *gin.Context, payload any) {
	c.JSON(nethttp.StatusOK, Result{Success: true, Code: transport.OK, Payload: payload})
}

func (h *HttpHandler) fail(c *gin.Context, code int, msg string) {
	c.JSON(nethttp.StatusOK, Result{Success: false, Code: code, Error: msg, Message: msg})
}

func (h *HttpHandler) error(c *gin.Context, err error) {
	c.JSON(nethttp.StatusOK, failure(err))
}
