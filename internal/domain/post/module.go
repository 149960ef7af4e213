package post

import (
	"time"

	"openbook_backend/internal/domain/post/handler"
	"openbook_backend/internal/domain/post/repository"
	"openbook_backend/internal/domain/post/service"
	"openbook_backend/internal/domain/visibility"
	"openbook_backend/internal/pkg/config"
	"openbook_backend/internal/pkg/middleware"
	"openbook_backend/internal/pkg/registry"
	"openbook_backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// PostModule 帖子模块，组装可见性评估链
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 20
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	collector := metrics.GetGlobalCollector()
	policyCfg := config.GlobalConfig.Policy

	// 1. 事实查询链：gorm 源 + redis 缓存装饰
	var facts visibility.FactProvider = visibility.NewGormFactProvider(ctx.DB)
	if ctx.Cache != nil {
		ttl := time.Duration(policyCfg.FactCacheTTLSeconds) * time.Second
		facts = visibility.NewCachedFactProvider(facts, ctx.Cache, ttl, collector)
	}

	// 2. 评估器和内容服务
	policy := visibility.PolicyConfig{
		StaffSeesSuspended:   policyCfg.StaffSeesSuspended,
		StaffBlockExemption:  policyCfg.StaffBlockExemption,
		OwnerSeesSoftDeleted: policyCfg.OwnerSeesSoftDeleted,
	}
	evaluator := visibility.NewEvaluator(facts, policy, collector)
	content := visibility.NewContentService(evaluator)

	// 3. 依赖注入
	repo := repository.NewPostRepository(ctx.DB)
	svc := service.NewPostService(repo, facts, content)
	h := handler.NewPostHandler(svc)

	// 4. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	g := r.Group("/posts")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.CreatePost)
		g.GET("/feed", h.GetFeed)
		g.GET("/communities/:communityId", h.GetCommunityFeed)
		g.GET("/:id", h.GetPost)
		g.DELETE("/:id", h.DeletePost)

		g.POST("/:id/close", h.ClosePost)
		g.POST("/:id/open", h.OpenPost)
		g.POST("/:id/comments/enable", h.EnableComments)
		g.POST("/:id/comments/disable", h.DisableComments)

		g.POST("/:id/comments", h.AddComment)
		g.GET("/:id/comments", h.GetComments)
		g.DELETE("/:id/comments/:commentId", h.DeleteComment)

		g.POST("/:id/reactions", h.React)
		g.DELETE("/:id/reactions", h.RemoveReaction)

		g.POST("/:id/mute", h.MutePost)
		g.POST("/:id/unmute", h.UnmutePost)
	}
}
