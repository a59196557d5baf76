package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	"daily-attendance/backend/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// ListEmployees 获取员工列表
// GET /api/v1/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEmployee 获取员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.employeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateEmployee 创建员工
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.employeeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateEmployee 更新员工
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.employeeSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, result)
}

// DeactivateEmployee 停用员工（软删除，保留历史出勤记录）
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.employeeSvc.Deactivate(c.Request.Context(), id); err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrInvalidWage):
		response.BadRequest(c, 12002, "日薪格式无效或为负数")
	case errors.Is(err, service.ErrInvalidName):
		response.BadRequest(c, 12003, "姓名含有不允许的字符")
	default:
		response.InternalError(c)
	}
}
