package community

import (
	"openbook_backend/internal/domain/community/handler"
	"openbook_backend/internal/domain/community/repository"
	"openbook_backend/internal/domain/community/service"
	"openbook_backend/internal/pkg/middleware"
	"openbook_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommunityModule 社区模块
type CommunityModule struct{}

func init() {
	registry.Register(&CommunityModule{})
}

func (m *CommunityModule) Name() string {
	return "community"
}

func (m *CommunityModule) Priority() int {
	return 10
}

func (m *CommunityModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewCommunityRepository(ctx.DB)
	svc := service.NewCommunityService(repo)
	h := handler.NewCommunityHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CommunityHandler) {
	g := r.Group("/communities")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.CreateCommunity)
		g.GET("", h.GetCommunities)
		g.GET("/:id", h.GetCommunity)
		g.PUT("/:id", h.UpdateCommunity)

		g.POST("/:id/join", h.Join)
		g.POST("/:id/invite", h.Invite)
		g.POST("/:id/leave", h.Leave)
		g.GET("/:id/members", h.GetMembers)
		g.PUT("/:id/members/role", h.SetMemberRole)

		g.POST("/:id/bans", h.BanMember)
		g.DELETE("/:id/bans/:userId", h.UnbanMember)
		g.GET("/:id/bans", h.GetBans)
	}
}
