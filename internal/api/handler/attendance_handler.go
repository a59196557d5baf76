package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	"daily-attendance/backend/pkg/response"
)

// AttendanceHandler 出勤记录模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ListAttendance 查询出勤记录（可按员工、日期范围过滤）
// GET /api/v1/attendance-records
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateAttendance 手工补录出勤
// POST /api/v1/attendance-records
func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req dto.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.Created(c, result)
}

// DeleteAttendance 删除出勤记录（链接来源的记录同步重置令牌）
// DELETE /api/v1/attendance-records/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attendanceSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 14001, "出勤记录不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14003, "日期格式无效")
	case errors.Is(err, service.ErrInvalidWage):
		response.BadRequest(c, 12002, "日薪格式无效或为负数")
	default:
		response.InternalError(c)
	}
}
