package handler

import (
	"errors"
	"net/http"

	"openbook_backend/internal/domain/moderation/service"
	userHandler "openbook_backend/internal/domain/user/handler"
	"openbook_backend/internal/domain/visibility"
	"openbook_backend/pkg/response"
	"openbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ModerationHandler struct {
	service service.ModerationService
	facts   visibility.FactProvider
}

func NewModerationHandler(s service.ModerationService, facts visibility.FactProvider) *ModerationHandler {
	return &ModerationHandler{service: s, facts: facts}
}

// ReportInput 举报输入
type ReportInput struct {
	TargetType  string `json:"targetType" binding:"required,oneof=post comment user"`
	TargetID    string `json:"targetId" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=spam harassment illegal other"`
	Description string `json:"description" binding:"max=1000"`
}

// DecideInput 裁定输入
type DecideInput struct {
	Approve        bool `json:"approve"`
	SuspensionDays int  `json:"suspensionDays"`
}

// Report 提交举报
func (h *ModerationHandler) Report(c *gin.Context) {
	var input ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	reporterID := userHandler.GetUserIDFromContext(c)
	report, err := h.service.Report(reporterID, input.TargetType, input.TargetID, input.Category, input.Description)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, report)
}

// GetPendingReports 获取待处理举报列表
func (h *ModerationHandler) GetPendingReports(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	reports, total, err := h.service.GetPendingReports(p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  reports,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// Decide 裁定举报
func (h *ModerationHandler) Decide(c *gin.Context) {
	var input DecideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	reviewerID := userHandler.GetUserIDFromContext(c)
	report, err := h.service.Decide(reviewerID, c.Param("id"), input.Approve, input.SuspensionDays)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "report not found")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, report)
}

// GetContentStatus 查询内容的最新裁定状态
func (h *ModerationHandler) GetContentStatus(c *gin.Context) {
	kind := visibility.Kind(c.Param("targetType"))
	if kind != visibility.KindPost && kind != visibility.KindComment {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "target type must be post or comment")
		return
	}

	status, err := h.facts.ModerationStatus(c.Request.Context(), kind, c.Param("targetId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"targetType": string(kind), "targetId": c.Param("targetId"), "status": string(status)})
}

// GetSuspensions 获取用户停权记录
func (h *ModerationHandler) GetSuspensions(c *gin.Context) {
	suspensions, err := h.service.GetSuspensions(c.Param("userId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, suspensions)
}
