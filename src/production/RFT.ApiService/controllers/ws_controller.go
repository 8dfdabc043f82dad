package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	hub "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Hub"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
)

// WSController upgrades observers onto the real-time stream. No backlog is
// replayed; new observers should pull a snapshot from /api/assets first.
type WSController struct {
	hub      *hub.Hub
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSController(h *hub.Hub, log *logger.Logger) *WSController {
	return &WSController{
		hub: h,
		log: log.WithComponent("ws-api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is handled by the CORS layer in front of us.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the websocket route with Gin
func (c *WSController) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", c.Subscribe)
}

func (c *WSController) Subscribe(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := hub.NewClient(c.hub, conn)
	c.hub.Register <- client
	client.Start()
}
