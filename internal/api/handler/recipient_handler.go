package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	"daily-attendance/backend/pkg/response"
)

// RecipientHandler 收件人模块 HTTP 处理器
type RecipientHandler struct {
	recipientSvc service.RecipientService
}

// NewRecipientHandler 创建 RecipientHandler
func NewRecipientHandler(recipientSvc service.RecipientService) *RecipientHandler {
	return &RecipientHandler{recipientSvc: recipientSvc}
}

// ListRecipients 获取收件人列表
// GET /api/v1/recipients
func (h *RecipientHandler) ListRecipients(c *gin.Context) {
	var req dto.RecipientListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.recipientSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateRecipient 添加收件人
// POST /api/v1/recipients
func (h *RecipientHandler) CreateRecipient(c *gin.Context) {
	var req dto.CreateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.recipientSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleRecipientError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateRecipient 更新收件人
// PUT /api/v1/recipients/:id
func (h *RecipientHandler) UpdateRecipient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.recipientSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleRecipientError(c, err)
		return
	}
	response.OK(c, result)
}

// DeactivateRecipient 停用收件人，之后不再参与派发
// DELETE /api/v1/recipients/:id
func (h *RecipientHandler) DeactivateRecipient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipientSvc.Deactivate(c.Request.Context(), id); err != nil {
		h.handleRecipientError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *RecipientHandler) handleRecipientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipientNotFound):
		response.NotFound(c, 13001, "收件人不存在")
	case errors.Is(err, service.ErrEmailExists):
		response.BadRequest(c, 13002, "邮箱已存在")
	default:
		response.InternalError(c)
	}
}
