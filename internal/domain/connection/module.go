package connection

import (
	"openbook_backend/internal/domain/connection/handler"
	"openbook_backend/internal/domain/connection/repository"
	"openbook_backend/internal/domain/connection/service"
	"openbook_backend/internal/pkg/middleware"
	"openbook_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ConnectionModule 连接/圈子/拉黑模块
type ConnectionModule struct{}

func init() {
	registry.Register(&ConnectionModule{})
}

func (m *ConnectionModule) Name() string {
	return "connection"
}

func (m *ConnectionModule) Priority() int {
	return 5
}

func (m *ConnectionModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewConnectionRepository(ctx.DB)
	svc := service.NewConnectionService(repo)
	h := handler.NewConnectionHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ConnectionHandler) {
	g := r.Group("/connections")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/circles", h.CreateCircle)
		g.GET("/circles", h.GetCircles)
		g.PUT("/circles/:id", h.UpdateCircle)
		g.DELETE("/circles/:id", h.DeleteCircle)

		g.POST("/connect", h.Connect)
		g.DELETE("/connect/:id", h.Disconnect)
		g.PUT("/connect/:id/circles", h.UpdateConnectionCircles)

		g.POST("/blocks", h.Block)
		g.DELETE("/blocks/:id", h.Unblock)
		g.GET("/blocks", h.GetBlockedUsers)
	}
}
