package visibility

// 内容类型
type Kind string

const (
	KindPost     Kind = "post"
	KindComment  Kind = "comment"
	KindReaction Kind = "reaction"
)

// 可见范围类型
type ScopeType string

const (
	ScopePublicCircle ScopeType = "public_circle"
	ScopeCustomCircle ScopeType = "custom_circle"
	ScopeCommunity    ScopeType = "community"
)

// 社区隐私类型
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Scope 内容的可见范围，三种类型互斥
type Scope struct {
	Type        ScopeType
	CircleIDs   []string // custom_circle 专用
	CommunityID string   // community 专用
}

// Role 社区角色，None 表示非成员
type Role int

const (
	RoleNone          Role = -1
	RoleMember        Role = 0
	RoleModerator     Role = 1
	RoleAdministrator Role = 2
)

// IsStaff 版主或管理员
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdministrator
}

// ModerationStatus 内容的审核状态
type ModerationStatus string

const (
	ModerationNone     ModerationStatus = "none"
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Viewer 发起访问的身份
type Viewer struct {
	ID string
}

// ContentItem 被访问的内容。帖子、评论、表情回应共用同一结构，
// 评论和表情回应继承父帖的 Closed/CommentsEnabled 门槛
type ContentItem struct {
	ID              string
	Kind            Kind
	OwnerID         string
	Scope           Scope
	Closed          bool
	CommentsEnabled bool
}

// Action 受控动作
type Action string

const (
	ActionComment   Action = "comment"
	ActionReact     Action = "react"
	ActionMute      Action = "mute"
	ActionDeleteOwn Action = "delete_own"
	ActionModerate  Action = "moderate"
)

// Reason 决策原因码，调用方据此映射业务码和 HTTP 状态
type Reason string

const (
	ReasonOwnerAccess               Reason = "owner_access"
	ReasonDeleted                   Reason = "deleted"
	ReasonOwnerSuspended            Reason = "owner_suspended"
	ReasonNotInCircle               Reason = "not_in_circle"
	ReasonPrivateCommunityNotMember Reason = "private_community_not_member"
	ReasonBanned                    Reason = "banned"
	ReasonBlocked                   Reason = "blocked"
	ReasonVisible                   Reason = "visible"
	ReasonPostClosed                Reason = "post_closed"
	ReasonCommentsDisabled          Reason = "comments_disabled"
	ReasonNotStaff                  Reason = "not_staff"
	ReasonNotOwner                  Reason = "not_owner"
)

// Decision 决策结果。拒绝是正常返回值而不是 error
type Decision struct {
	Allow  bool
	Reason Reason
}

func allow(reason Reason) Decision {
	return Decision{Allow: true, Reason: reason}
}

func deny(reason Reason) Decision {
	return Decision{Allow: false, Reason: reason}
}

// PolicyConfig 评估策略开关，由配置注入，便于确定性测试
type PolicyConfig struct {
	StaffSeesSuspended   bool // 社区管理人员可以看到被停权用户的内容
	StaffBlockExemption  bool // 社区管理人员的内容不受拉黑关系影响
	OwnerSeesSoftDeleted bool // 作者可以看到自己已软删除的内容
}

// DefaultPolicy 与线上配置默认值一致
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		StaffSeesSuspended:   true,
		StaffBlockExemption:  true,
		OwnerSeesSoftDeleted: false,
	}
}
