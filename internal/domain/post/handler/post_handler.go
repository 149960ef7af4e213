package handler

import (
	"errors"
	"net/http"

	"openbook_backend/internal/domain/post/service"
	userHandler "openbook_backend/internal/domain/user/handler"
	"openbook_backend/internal/domain/visibility"
	"openbook_backend/pkg/response"
	"openbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

// CreatePostInput 发帖输入
type CreatePostInput struct {
	Text        string   `json:"text" binding:"required,max=5000"`
	ScopeType   string   `json:"scopeType" binding:"required,oneof=public_circle custom_circle community"`
	CircleIDs   []string `json:"circleIds"`
	CommunityID string   `json:"communityId"`
}

// CommentInput 评论输入
type CommentInput struct {
	ParentID string `json:"parentId"`
	Text     string `json:"text" binding:"required,max=2000"`
}

// ReactionInput 表情回应输入
type ReactionInput struct {
	CommentID string `json:"commentId"`
	Emoji     string `json:"emoji" binding:"required,max=16"`
}

// writeDenied 将可见性拒绝原因映射为业务码和 HTTP 状态。
// 映射关系沿用既有客户端的预期：拉黑和圈子拒绝按参数错误返回
func writeDenied(c *gin.Context, d visibility.Decision) {
	switch d.Reason {
	case visibility.ReasonBlocked:
		response.Error(c, http.StatusBadRequest, response.ErrContentBlocked, "content unavailable")
	case visibility.ReasonPrivateCommunityNotMember:
		response.Error(c, http.StatusBadRequest, response.ErrNotCommunityMember, "not a community member")
	case visibility.ReasonNotInCircle:
		response.Error(c, http.StatusBadRequest, response.ErrNotInCircle, "content unavailable")
	case visibility.ReasonBanned:
		response.Error(c, http.StatusForbidden, response.ErrCommunityBanned, "banned from this community")
	case visibility.ReasonDeleted:
		response.Error(c, http.StatusNotFound, response.ErrContentDeleted, "content not found")
	case visibility.ReasonOwnerSuspended:
		response.Error(c, http.StatusForbidden, response.ErrOwnerSuspended, "content unavailable")
	case visibility.ReasonPostClosed:
		response.Error(c, http.StatusForbidden, response.ErrPostClosed, "post is closed")
	case visibility.ReasonCommentsDisabled:
		response.Error(c, http.StatusBadRequest, response.ErrCommentsDisabled, "comments are disabled")
	default:
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, "permission denied")
	}
}

// writeServiceError 统一处理服务层错误
func writeServiceError(c *gin.Context, err error) {
	var denied *service.AccessDeniedError
	if errors.As(err, &denied) {
		writeDenied(c, denied.Decision)
		return
	}
	var evalErr *visibility.EvaluationError
	if errors.As(err, &evalErr) {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "evaluation failed")
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "not found")
		return
	}
	response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
}

// CreatePost 发帖
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	post, err := h.service.CreatePost(c.Request.Context(), userID, input.Text, input.ScopeType, input.CircleIDs, input.CommunityID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// GetFeed 获取首页信息流
func (h *PostHandler) GetFeed(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	userID := userHandler.GetUserIDFromContext(c)
	posts, err := h.service.GetFeed(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, posts)
}

// GetCommunityFeed 获取社区信息流
func (h *PostHandler) GetCommunityFeed(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	userID := userHandler.GetUserIDFromContext(c)
	posts, err := h.service.GetCommunityFeed(c.Request.Context(), userID, c.Param("communityId"), p.Page, p.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, posts)
}

// GetPost 获取单帖
func (h *PostHandler) GetPost(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	post, err := h.service.GetPost(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, "success")
}

// ClosePost 关闭帖子
func (h *PostHandler) ClosePost(c *gin.Context) {
	h.setClosed(c, true)
}

// OpenPost 重新开放帖子
func (h *PostHandler) OpenPost(c *gin.Context) {
	h.setClosed(c, false)
}

func (h *PostHandler) setClosed(c *gin.Context, closed bool) {
	userID := userHandler.GetUserIDFromContext(c)

	post, err := h.service.SetClosed(c.Request.Context(), userID, c.Param("id"), closed)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// EnableComments 开启评论
func (h *PostHandler) EnableComments(c *gin.Context) {
	h.setCommentsEnabled(c, true)
}

// DisableComments 关闭评论
func (h *PostHandler) DisableComments(c *gin.Context) {
	h.setCommentsEnabled(c, false)
}

func (h *PostHandler) setCommentsEnabled(c *gin.Context, enabled bool) {
	userID := userHandler.GetUserIDFromContext(c)

	post, err := h.service.SetCommentsEnabled(c.Request.Context(), userID, c.Param("id"), enabled)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// AddComment 发表评论
func (h *PostHandler) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	comment, err := h.service.AddComment(c.Request.Context(), userID, c.Param("id"), input.ParentID, input.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, comment)
}

// GetComments 获取评论列表
func (h *PostHandler) GetComments(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	userID := userHandler.GetUserIDFromContext(c)
	comments, err := h.service.GetComments(c.Request.Context(), userID, c.Param("id"), p.Page, p.Limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, comments)
}

// DeleteComment 删除评论
func (h *PostHandler) DeleteComment(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.DeleteComment(c.Request.Context(), userID, c.Param("commentId")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, "success")
}

// React 添加表情回应
func (h *PostHandler) React(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	reaction, err := h.service.React(c.Request.Context(), userID, c.Param("id"), input.CommentID, input.Emoji)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, reaction)
}

// RemoveReaction 移除表情回应
func (h *PostHandler) RemoveReaction(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	if err := h.service.RemoveReaction(c.Request.Context(), userID, c.Param("id"), input.CommentID, input.Emoji); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, "success")
}

// MutePost 静音帖子
func (h *PostHandler) MutePost(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.MutePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, "success")
}

// UnmutePost 取消静音
func (h *PostHandler) UnmutePost(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.UnmutePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, "success")
}
