package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	service *service.ProgressService
}

func NewProgressController(s *service.ProgressService) *ProgressController {
	return &ProgressController{service: s}
}

// ListEnrolledCourses godoc
// @Summary 我报名的课程
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /users/course-progress/{userId}/enrolled-courses [get]
func (c *ProgressController) ListEnrolledCourses(ctx *gin.Context) {
	courses, err := c.service.ListEnrolledCourses(ctx.Request.Context(), ctx.Param("userId"), callerID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Enrolled courses retrieved successfully", courses)
}

// GetProgress godoc
// @Summary 课程学习进度
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "用户ID"
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=model.UserCourseProgress}
// @Router /users/course-progress/{userId}/courses/{courseId} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	progress, err := c.service.GetProgress(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("courseId"), callerID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course progress retrieved successfully", progress)
}

// UpdateProgress godoc
// @Summary 更新课程学习进度
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "用户ID"
// @Param courseId path string true "课程ID"
// @Param body body service.UpdateProgressInput true "章节完成情况"
// @Success 200 {object} util.Response{data=model.UserCourseProgress}
// @Router /users/course-progress/{userId}/courses/{courseId} [put]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	var req service.UpdateProgressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	progress, err := c.service.UpdateProgress(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("courseId"), callerID(ctx), &req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course progress updated successfully", progress)
}
