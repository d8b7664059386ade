package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Burrow_Hole/internal/handler"
	"Burrow_Hole/internal/metrics"
	"Burrow_Hole/internal/middleware"
)

type Deps struct {
	Trending handler.TrendingReader
	Email    handler.EmailPublisher
	Checks   map[string]handler.HealthCheck
	Secret   []byte
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	health := handler.NewHealthHandler(d.Checks)
	trending := handler.NewTrendingHandler(d.Trending)

	r.GET("/healthz", health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/trending", trending.List)

	// 运维接口
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(d.Secret))
	{
		adminGroup.POST("/trending/refresh", trending.Refresh)
		if d.Email != nil {
			email := handler.NewEmailHandler(d.Email)
			adminGroup.POST("/email/:scope/code", email.SendCode)
		}
	}

	return r
}
