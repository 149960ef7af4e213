package handler

import (
	"errors"
	"net/http"

	"openbook_backend/internal/domain/community/service"
	userHandler "openbook_backend/internal/domain/user/handler"
	"openbook_backend/pkg/response"
	"openbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommunityHandler struct {
	service service.CommunityService
}

func NewCommunityHandler(s service.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: s}
}

// CreateCommunityInput 创建社区输入
type CreateCommunityInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Privacy     string `json:"privacy" binding:"required,oneof=public private"`
}

// UpdateCommunityInput 更新社区输入
type UpdateCommunityInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

// MemberInput 成员操作输入
type MemberInput struct {
	UserID string `json:"userId" binding:"required"`
}

// RoleInput 角色设置输入
type RoleInput struct {
	UserID string `json:"userId" binding:"required"`
	Role   int    `json:"role"`
}

// BanInput 封禁输入
type BanInput struct {
	UserID string `json:"userId" binding:"required"`
	Reason string `json:"reason"`
}

// CreateCommunity 创建社区
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	var input CreateCommunityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	community, err := h.service.CreateCommunity(userID, input.Name, input.Title, input.Description, input.Privacy)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrCommunityExists, err.Error())
		return
	}
	response.Success(c, community)
}

// GetCommunities 搜索社区列表
func (h *CommunityHandler) GetCommunities(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)
	keyword := c.Query("keyword")

	communities, total, err := h.service.GetCommunities(keyword, p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  communities,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetCommunity 获取社区详情
func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	community, err := h.service.GetCommunity(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCommunityNotFound, "community not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, community)
}

// UpdateCommunity 更新社区信息
func (h *CommunityHandler) UpdateCommunity(c *gin.Context) {
	var input UpdateCommunityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	community, err := h.service.UpdateCommunity(userID, c.Param("id"), input.Title, input.Description)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, community)
}

// Join 加入社区
func (h *CommunityHandler) Join(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	membership, err := h.service.Join(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCommunityNotFound, "community not found")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, membership)
}

// Invite 邀请用户加入社区
func (h *CommunityHandler) Invite(c *gin.Context) {
	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	actorID := userHandler.GetUserIDFromContext(c)
	membership, err := h.service.Invite(actorID, c.Param("id"), input.UserID)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, membership)
}

// Leave 退出社区
func (h *CommunityHandler) Leave(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.Leave(userID, c.Param("id")); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, "success")
}

// GetMembers 获取成员列表
func (h *CommunityHandler) GetMembers(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	members, total, err := h.service.GetMembers(c.Param("id"), p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  members,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// SetMemberRole 设置成员角色
func (h *CommunityHandler) SetMemberRole(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	actorID := userHandler.GetUserIDFromContext(c)
	membership, err := h.service.SetMemberRole(actorID, c.Param("id"), input.UserID, input.Role)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, membership)
}

// BanMember 封禁成员
func (h *CommunityHandler) BanMember(c *gin.Context) {
	var input BanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	actorID := userHandler.GetUserIDFromContext(c)
	if err := h.service.BanMember(actorID, c.Param("id"), input.UserID, input.Reason); err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, "success")
}

// UnbanMember 解除封禁
func (h *CommunityHandler) UnbanMember(c *gin.Context) {
	actorID := userHandler.GetUserIDFromContext(c)

	if err := h.service.UnbanMember(actorID, c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, "success")
}

// GetBans 获取封禁列表
func (h *CommunityHandler) GetBans(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	actorID := userHandler.GetUserIDFromContext(c)
	bans, total, err := h.service.GetBans(actorID, c.Param("id"), p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  bans,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}
