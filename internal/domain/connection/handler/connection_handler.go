package handler

import (
	"errors"
	"net/http"

	"openbook_backend/internal/domain/connection/service"
	userHandler "openbook_backend/internal/domain/user/handler"
	"openbook_backend/pkg/response"
	"openbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ConnectionHandler struct {
	service service.ConnectionService
}

func NewConnectionHandler(s service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: s}
}

// CircleInput 圈子输入
type CircleInput struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color"`
}

// ConnectInput 连接输入
type ConnectInput struct {
	TargetID  string   `json:"targetId" binding:"required"`
	CircleIDs []string `json:"circleIds"`
}

// BlockInput 拉黑输入
type BlockInput struct {
	TargetID string `json:"targetId" binding:"required"`
}

// CreateCircle 创建圈子
func (h *ConnectionHandler) CreateCircle(c *gin.Context) {
	var input CircleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	circle, err := h.service.CreateCircle(userID, input.Name, input.Color)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, circle)
}

// GetCircles 获取自己的圈子列表
func (h *ConnectionHandler) GetCircles(c *gin.Context) {
	userID := userHandler.GetUserIDFromContext(c)

	circles, err := h.service.GetCircles(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, circles)
}

// UpdateCircle 更新圈子
func (h *ConnectionHandler) UpdateCircle(c *gin.Context) {
	circleID := c.Param("id")

	var input CircleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	circle, err := h.service.UpdateCircle(userID, circleID, input.Name, input.Color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "circle not found")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, circle)
}

// DeleteCircle 删除圈子
func (h *ConnectionHandler) DeleteCircle(c *gin.Context) {
	circleID := c.Param("id")
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.DeleteCircle(userID, circleID); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, "success")
}

// Connect 发起/确认连接
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var input ConnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	conn, err := h.service.Connect(userID, input.TargetID, input.CircleIDs)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, conn)
}

// Disconnect 断开连接
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	targetID := c.Param("id")
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.Disconnect(userID, targetID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "success")
}

// UpdateConnectionCircles 调整连接所属圈子
func (h *ConnectionHandler) UpdateConnectionCircles(c *gin.Context) {
	targetID := c.Param("id")

	var input struct {
		CircleIDs []string `json:"circleIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	conn, err := h.service.UpdateConnectionCircles(userID, targetID, input.CircleIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "connection not found")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, conn)
}

// Block 拉黑用户
func (h *ConnectionHandler) Block(c *gin.Context) {
	var input BlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := userHandler.GetUserIDFromContext(c)
	if err := h.service.BlockUser(userID, input.TargetID); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, "success")
}

// Unblock 取消拉黑
func (h *ConnectionHandler) Unblock(c *gin.Context) {
	targetID := c.Param("id")
	userID := userHandler.GetUserIDFromContext(c)

	if err := h.service.UnblockUser(userID, targetID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "success")
}

// GetBlockedUsers 获取拉黑列表
func (h *ConnectionHandler) GetBlockedUsers(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)

	userID := userHandler.GetUserIDFromContext(c)
	blocks, total, err := h.service.GetBlockedUsers(userID, p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  blocks,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}
