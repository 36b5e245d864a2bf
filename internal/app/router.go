package app

import (
	"course_market_backend/docs"
	"course_market_backend/internal/middleware"
	"course_market_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, identity middleware.IdentityResolver) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	auth := middleware.AuthMiddleware(identity)
	api := router.Group("/api")

	api.GET("/health", c.health.HealthCheck)

	// 课程：浏览公开，修改需登录
	courses := api.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.GET("/:courseId", c.course.GetCourse)

		courses.POST("", auth, c.course.CreateCourse)
		courses.PUT("/:courseId", auth, c.course.UpdateCourse)
		courses.DELETE("/:courseId", auth, c.course.DeleteCourse)
		courses.POST("/:courseId/image", auth, c.course.UploadCourseImage)
		courses.POST("/:courseId/sections/:sectionId/chapters/:chapterId/get-upload-url", auth, c.course.GetChapterUploadURL)
	}

	transactions := api.Group("/transactions", auth)
	{
		transactions.POST("/stripe/payment-intent", c.transaction.CreatePaymentIntent)
		transactions.POST("", c.transaction.CreateTransaction)
		transactions.GET("", c.transaction.ListTransactions)
	}

	progress := api.Group("/users/course-progress", auth)
	{
		progress.GET("/:userId/enrolled-courses", c.progress.ListEnrolledCourses)
		progress.GET("/:userId/courses/:courseId", c.progress.GetProgress)
		progress.PUT("/:userId/courses/:courseId", c.progress.UpdateProgress)
	}
}
