package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"ctchen222/minimax-tictactoe/internal/api/controller"
	"ctchen222/minimax-tictactoe/internal/api/response"
	"ctchen222/minimax-tictactoe/internal/api/service"
	"ctchen222/minimax-tictactoe/internal/hub/types"
	"ctchen222/minimax-tictactoe/internal/player"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Registrar accepts players for the hub.
type Registrar interface {
	Register() chan<- *types.RegistrationRequest
}

// Controllers groups the REST handlers mounted under /api.
type Controllers struct {
	User       *controller.UserController
	Game       *controller.GameController
	Preference *controller.PreferenceController
}

type Server struct {
	hub       Registrar
	users     service.UserService
	upgrader  websocket.Upgrader
	engine    *gin.Engine
	staticDir string
}

// NewServer builds the gin engine serving the websocket endpoint, the REST
// API and the browser client from staticDir.
func NewServer(h Registrar, users service.UserService, ctrls Controllers, staticDir string) *Server {
	s := &Server{
		hub:   h,
		users: users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		engine:    gin.New(),
		staticDir: staticDir,
	}
	s.engine.Use(gin.Recovery())
	s.registerHandlers(ctrls)
	return s
}

// Engine returns the http.Handler of the server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers(ctrls Controllers) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.POST("/evaluate", ctrls.Game.Evaluate)
	api.POST("/move", ctrls.Game.Move)
	api.POST("/register", ctrls.User.Register)
	api.POST("/login", ctrls.User.Login)
	api.POST("/guest", ctrls.User.GuestLogin)
	requirePlayer := controller.RequirePlayer(s.users)
	api.GET("/preferences/:playerId", requirePlayer, ctrls.Preference.Get)
	api.PUT("/preferences/:playerId", requirePlayer, ctrls.Preference.Update)

	if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
		s.engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.staticDir))))
	} else {
		slog.Warn("Static directory not found, browser client disabled", "dir", s.staticDir)
	}
}

// handleWebSocket's only responsibility is to upgrade the connection and
// pass a registration request to the hub. It does not distinguish between
// new and reconnecting players.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	// A login token wins over a client-chosen id; otherwise a new id is generated.
	playerID := c.Query("playerId")
	var err error
	if token := c.Query("token"); token != "" {
		playerID, err = s.users.ParseToken(token)
	} else {
		err = s.users.AuthorizePlayer("", playerID)
	}
	if err != nil {
		slog.WarnContext(ctx, "Rejected websocket identity", "player.id", playerID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unauthorized player")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	if playerID == "" {
		playerID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("player.id", playerID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	// The request context ends with this handler; the hub outlives it.
	s.hub.Register() <- &types.RegistrationRequest{
		Player: player.NewPlayer(playerID, conn),
		Ctx:    context.WithoutCancel(ctx),
	}
}
