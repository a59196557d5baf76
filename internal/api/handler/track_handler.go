package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"daily-attendance/backend/internal/service"
)

// TrackHandler 出勤链接核销 HTTP 处理器
// 面向邮件里的点击，返回人类可读的 HTML 页面而非 JSON
type TrackHandler struct {
	trackSvc service.TrackService
}

// NewTrackHandler 创建 TrackHandler
func NewTrackHandler(trackSvc service.TrackService) *TrackHandler {
	return &TrackHandler{trackSvc: trackSvc}
}

var trackSuccessPage = template.Must(template.New("track_success").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>出勤已记录</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 60px;">
  <h1 style="color: #2e7d32;">✓ 出勤已记录</h1>
  <p><strong>{{.EmployeeName}}</strong> — {{.WorkDate}}</p>
  {{if .AlreadyRecorded}}<p style="color:#888;">该出勤此前已记录，本次点击未产生新记录。</p>{{end}}
</body>
</html>`))

var trackErrorPage = template.Must(template.New("track_error").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>无法记录出勤</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 60px;">
  <h1 style="color: #c62828;">无法记录出勤</h1>
  <p>{{.Message}}</p>
</body>
</html>`))

// Redeem 核销出勤链接
// GET /track/:token/:ref
func (h *TrackHandler) Redeem(c *gin.Context) {
	result, err := h.trackSvc.Redeem(c.Request.Context(), c.Param("token"), c.Param("ref"))
	if err != nil {
		status, message := trackErrorView(err)
		h.renderPage(c, status, trackErrorPage, gin.H{"Message": message})
		return
	}

	h.renderPage(c, http.StatusOK, trackSuccessPage, result)
}

// trackErrorView 业务错误到用户可见文案的映射
// 令牌枚举、引用篡改与员工不存在统一为"链接无效"，不向外泄露区别
func trackErrorView(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrInvalidRef),
		errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound, "链接无效或已过期。"
	case errors.Is(err, service.ErrEmployeeInactive):
		return http.StatusConflict, "该员工已离职，无法记录出勤。"
	default:
		return http.StatusInternalServerError, "系统繁忙，请稍后重试。"
	}
}

func (h *TrackHandler) renderPage(c *gin.Context, status int, page *template.Template, data interface{}) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}
