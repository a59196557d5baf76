package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	"daily-attendance/backend/pkg/response"
)

// DispatchHandler 派发模块 HTTP 处理器
type DispatchHandler struct {
	dispatchSvc service.DispatchService
}

// NewDispatchHandler 创建 DispatchHandler
func NewDispatchHandler(dispatchSvc service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchSvc: dispatchSvc}
}

// TriggerDispatch 手工触发一次派发（单次尝试，不走调度器重试）
// POST /api/v1/dispatch/send
//
// 前置条件短路按 200 + sent=false 返回，管理员看原因即可，不算错误
func (h *DispatchHandler) TriggerDispatch(c *gin.Context) {
	result, err := h.dispatchSvc.DispatchToday(c.Request.Context())
	if err != nil {
		if reason, ok := dispatchSkipReason(err); ok {
			response.OK(c, &dto.DispatchResult{Sent: false, Reason: reason})
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListDispatchRecords 查询派发记录
// GET /api/v1/dispatch/records
func (h *DispatchHandler) ListDispatchRecords(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.dispatchSvc.ListRecords(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// dispatchSkipReason 前置条件短路错误到原因码的映射
func dispatchSkipReason(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrAlreadyDispatched):
		return "already_dispatched", true
	case errors.Is(err, service.ErrNoActiveEmployees):
		return "no_active_employees", true
	case errors.Is(err, service.ErrNoActiveRecipients):
		return "no_active_recipients", true
	case errors.Is(err, service.ErrMailNotConfigured):
		return "mail_not_configured", true
	}
	return "", false
}
