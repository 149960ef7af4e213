package moderation

import (
	"openbook_backend/internal/domain/moderation/handler"
	"openbook_backend/internal/domain/moderation/repository"
	"openbook_backend/internal/domain/moderation/service"
	"openbook_backend/internal/domain/visibility"
	"openbook_backend/internal/pkg/middleware"
	"openbook_backend/internal/pkg/registry"
	"openbook_backend/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// ModerationModule 举报裁定模块
type ModerationModule struct{}

func init() {
	registry.Register(&ModerationModule{})
}

func (m *ModerationModule) Name() string {
	return "moderation"
}

func (m *ModerationModule) Priority() int {
	return 15
}

func (m *ModerationModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewModerationRepository(ctx.DB)
	remover := repository.NewGormContentRemover(ctx.DB)

	// 2. 裁定执行队列
	pool := worker.NewWorkerPool(remover, 4, 256)
	pool.Start()

	svc := service.NewModerationService(repo, pool)
	h := handler.NewModerationHandler(svc, visibility.NewGormFactProvider(ctx.DB))

	// 3. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ModerationHandler) {
	g := r.Group("/moderation")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/reports", h.Report)
	}

	admin := r.Group("/moderation")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/reports/pending", h.GetPendingReports)
		admin.POST("/reports/:id/decide", h.Decide)
		admin.GET("/status/:targetType/:targetId", h.GetContentStatus)
		admin.GET("/suspensions/:userId", h.GetSuspensions)
	}
}
