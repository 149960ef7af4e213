package visibility

import (
	"context"
	"fmt"
)

// FactProvider 为评估器提供只读事实查询。
// 每次调用是独立的点查询，跨调用不保证一致性快照
type FactProvider interface {
	// IsBlocked 任一方向存在拉黑关系即为 true
	IsBlocked(ctx context.Context, viewerID, otherID string) (bool, error)

	// CommunityRole 非成员返回 RoleNone
	CommunityRole(ctx context.Context, userID, communityID string) (Role, error)

	// IsBanned 用户是否被该社区封禁
	IsBanned(ctx context.Context, userID, communityID string) (bool, error)

	// IsSoftDeleted 内容是否已被软删除
	IsSoftDeleted(ctx context.Context, kind Kind, itemID string) (bool, error)

	// ModerationStatus 内容的审核状态
	ModerationStatus(ctx context.Context, kind Kind, itemID string) (ModerationStatus, error)

	// ConnectedInCircles 作者到访问者的连接是否落在给定圈子中
	ConnectedInCircles(ctx context.Context, ownerID, viewerID string, circleIDs []string) (bool, error)

	// HasActiveSuspension 用户是否处于生效中的停权
	HasActiveSuspension(ctx context.Context, userID string) (bool, error)

	// CommunityPrivacy 社区隐私类型（public/private）
	CommunityPrivacy(ctx context.Context, communityID string) (string, error)
}

// EvaluationError 事实查询失败。策略性拒绝不是错误，只有底层存储故障才会走到这里
type EvaluationError struct {
	Fact string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("visibility: %s lookup failed: %v", e.Fact, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func factErr(fact string, err error) error {
	return &EvaluationError{Fact: fact, Err: err}
}
