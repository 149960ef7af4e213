package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 内容可见性错误 200xx（reason code 映射）
	ErrContentBlocked     = 20001
	ErrContentDeleted     = 20002
	ErrNotCommunityMember = 20003
	ErrCommunityBanned    = 20004
	ErrNotInCircle        = 20005
	ErrOwnerSuspended     = 20006
	ErrPostClosed         = 20007
	ErrCommentsDisabled   = 20008

	// 社区模块错误 300xx
	ErrCommunityNotFound = 30001
	ErrCommunityExists   = 30002
	ErrAlreadyMember     = 30003
	ErrNotMember         = 30004

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
