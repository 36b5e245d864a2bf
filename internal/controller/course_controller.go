package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	service *service.CourseService
}

func NewCourseController(s *service.CourseService) *CourseController {
	return &CourseController{service: s}
}

type CreateCourseRequest struct {
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
}

type ChapterUploadURLRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

func callerID(ctx *gin.Context) string {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		return claims.UserID()
	}
	return ""
}

func handleCourseError(ctx *gin.Context, err error, action string) {
	if errors.Is(err, util.ErrPermissionDenied) {
		util.Forbidden(ctx, "Unauthorized to "+action+" this course")
		return
	}
	util.HandleServiceError(ctx, err)
}

// ListCourses godoc
// @Summary 课程列表
// @Description 按分类精确过滤，category 为空或 all 时返回全部课程
// @Tags 课程
// @Produce json
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.service.ListCourses(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "Courses fetched successfully", courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.service.GetCourse(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Course fetched successfully", course)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 以默认占位内容创建草稿课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "教师信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, 400, "Invalid request body", err.Error())
		return
	}

	course, err := c.service.CreateCourse(ctx.Request.Context(), req.TeacherID, req.TeacherName)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, "Course created successfully", course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Description 仅课程教师可修改；price 为主币单位的数字或字符串，sections 可为数组或序列化后的字符串
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param body body service.UpdateCourseInput true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req service.UpdateCourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, 400, "Invalid request body", err.Error())
		return
	}

	course, err := c.service.UpdateCourse(ctx.Request.Context(), ctx.Param("courseId"), callerID(ctx), &req)
	if err != nil {
		handleCourseError(ctx, err, "update")
		return
	}
	util.Success(ctx, "Course updated successfully", course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=map[string]string}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	if err := c.service.DeleteCourse(ctx.Request.Context(), courseID, callerID(ctx)); err != nil {
		handleCourseError(ctx, err, "delete")
		return
	}
	util.Success(ctx, "Course deleted successfully", gin.H{"courseId": courseID})
}

// UploadCourseImage godoc
// @Summary 上传课程封面
// @Tags 课程
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param image formData file true "封面图片"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{courseId}/image [post]
func (c *CourseController) UploadCourseImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "Image file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	course, err := c.service.UploadCourseImage(
		ctx.Request.Context(),
		ctx.Param("courseId"),
		callerID(ctx),
		file.Filename,
		file.Header.Get("Content-Type"),
		file.Size,
		src,
	)
	if err != nil {
		handleCourseError(ctx, err, "update")
		return
	}
	util.Success(ctx, "Course image uploaded successfully", course)
}

// GetChapterUploadURL godoc
// @Summary 获取章节视频直传地址
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Param sectionId path string true "小节ID"
// @Param chapterId path string true "章节ID"
// @Param body body ChapterUploadURLRequest true "文件信息"
// @Success 200 {object} util.Response{data=service.ChapterUploadURL}
// @Router /courses/{courseId}/sections/{sectionId}/chapters/{chapterId}/get-upload-url [post]
func (c *CourseController) GetChapterUploadURL(ctx *gin.Context) {
	var req ChapterUploadURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, 400, "Invalid request body", err.Error())
		return
	}

	result, err := c.service.GetChapterUploadURL(
		ctx.Request.Context(),
		ctx.Param("courseId"),
		ctx.Param("sectionId"),
		ctx.Param("chapterId"),
		callerID(ctx),
		req.FileName,
		req.FileType,
	)
	if err != nil {
		handleCourseError(ctx, err, "update")
		return
	}
	util.Success(ctx, "Upload URL generated successfully", result)
}
