package visibility

import (
	"context"

	"openbook_backend/pkg/metrics"
)

// Evaluator 内容可见性评估器。无内部可变状态，可并发使用
type Evaluator struct {
	facts     FactProvider
	policy    PolicyConfig
	collector *metrics.MetricsCollector
}

func NewEvaluator(facts FactProvider, policy PolicyConfig, collector *metrics.MetricsCollector) *Evaluator {
	return &Evaluator{
		facts:     facts,
		policy:    policy,
		collector: collector,
	}
}

// CanView 判定 viewer 是否可见 item。
// 固定顺序短路评估：软删除 → 作者本人 → 作者停权 → 范围检查 → 拉黑检查 → 放行。
// 顺序承载优先级语义，调整顺序会改变决策结果
func (e *Evaluator) CanView(ctx context.Context, viewer Viewer, item ContentItem) (Decision, error) {
	d, err := e.canView(ctx, viewer, item)
	if err == nil {
		e.record(d)
	}
	return d, err
}

func (e *Evaluator) canView(ctx context.Context, viewer Viewer, item ContentItem) (Decision, error) {
	// 1. 软删除在作者例外之前检查，软删除对所有人生效
	deleted, err := e.facts.IsSoftDeleted(ctx, item.Kind, item.ID)
	if err != nil {
		return Decision{}, factErr("soft-delete", err)
	}
	if deleted {
		if !(viewer.ID == item.OwnerID && e.policy.OwnerSeesSoftDeleted) {
			return deny(ReasonDeleted), nil
		}
	}

	// 2. 作者总能看到自己未删除的内容，跳过拉黑和范围检查
	if viewer.ID == item.OwnerID {
		return allow(ReasonOwnerAccess), nil
	}

	// 3. 作者处于停权状态时内容对外不可见，社区管理人员可豁免以便复查
	suspended, err := e.facts.HasActiveSuspension(ctx, item.OwnerID)
	if err != nil {
		return Decision{}, factErr("suspension", err)
	}
	if suspended {
		exempt, err := e.staffExemption(ctx, viewer, item, e.policy.StaffSeesSuspended)
		if err != nil {
			return Decision{}, err
		}
		if !exempt {
			return deny(ReasonOwnerSuspended), nil
		}
	}

	// 4. 范围检查
	switch item.Scope.Type {
	case ScopePublicCircle:
		// 公开内容无成员要求，直接进入拉黑检查

	case ScopeCustomCircle:
		inCircle, err := e.facts.ConnectedInCircles(ctx, item.OwnerID, viewer.ID, item.Scope.CircleIDs)
		if err != nil {
			return Decision{}, factErr("circle-connection", err)
		}
		if !inCircle {
			return deny(ReasonNotInCircle), nil
		}

	case ScopeCommunity:
		communityID := item.Scope.CommunityID

		// 私有社区的成员门槛是绝对的，先于拉黑和管理人员例外
		privacy, err := e.facts.CommunityPrivacy(ctx, communityID)
		if err != nil {
			return Decision{}, factErr("community-privacy", err)
		}
		role, err := e.facts.CommunityRole(ctx, viewer.ID, communityID)
		if err != nil {
			return Decision{}, factErr("community-role", err)
		}
		if privacy == PrivacyPrivate && role == RoleNone {
			return deny(ReasonPrivateCommunityNotMember), nil
		}

		// 封禁是硬拒绝
		banned, err := e.facts.IsBanned(ctx, viewer.ID, communityID)
		if err != nil {
			return Decision{}, factErr("community-ban", err)
		}
		if banned {
			return deny(ReasonBanned), nil
		}
	}

	// 5. 拉黑检查，任一方向生效。社区管理人员发布的社区内容豁免
	blocked, err := e.facts.IsBlocked(ctx, viewer.ID, item.OwnerID)
	if err != nil {
		return Decision{}, factErr("block", err)
	}
	if blocked {
		if item.Scope.Type == ScopeCommunity && e.policy.StaffBlockExemption {
			ownerRole, err := e.facts.CommunityRole(ctx, item.OwnerID, item.Scope.CommunityID)
			if err != nil {
				return Decision{}, factErr("community-role", err)
			}
			if ownerRole.IsStaff() {
				return allow(ReasonVisible), nil
			}
		}
		return deny(ReasonBlocked), nil
	}

	return allow(ReasonVisible), nil
}

// CanAct 判定 viewer 是否可对 item 执行动作。
// 读依赖型动作（comment/react/mute）以 CanView 为前置条件
func (e *Evaluator) CanAct(ctx context.Context, viewer Viewer, item ContentItem, action Action) (Decision, error) {
	d, err := e.canAct(ctx, viewer, item, action)
	if err == nil {
		e.record(d)
	}
	return d, err
}

func (e *Evaluator) canAct(ctx context.Context, viewer Viewer, item ContentItem, action Action) (Decision, error) {
	switch action {
	case ActionComment, ActionReact, ActionMute:
		d, err := e.canView(ctx, viewer, item)
		if err != nil || !d.Allow {
			return d, err
		}

		// 帖子关闭后只有作者和社区管理人员可以操作
		if item.Closed {
			pass, err := e.ownerOrStaff(ctx, viewer, item)
			if err != nil {
				return Decision{}, err
			}
			if !pass {
				return deny(ReasonPostClosed), nil
			}
		}

		if action == ActionComment && !item.CommentsEnabled {
			pass, err := e.ownerOrStaff(ctx, viewer, item)
			if err != nil {
				return Decision{}, err
			}
			if !pass {
				return deny(ReasonCommentsDisabled), nil
			}
		}
		return allow(ReasonVisible), nil

	case ActionDeleteOwn:
		if viewer.ID != item.OwnerID {
			return deny(ReasonNotOwner), nil
		}
		deleted, err := e.facts.IsSoftDeleted(ctx, item.Kind, item.ID)
		if err != nil {
			return Decision{}, factErr("soft-delete", err)
		}
		if deleted {
			return deny(ReasonDeleted), nil
		}

		// 关闭的帖子冻结自删，连作者本人也不例外，只有社区管理人员可以
		if item.Closed {
			staff, err := e.viewerIsStaff(ctx, viewer, item)
			if err != nil {
				return Decision{}, err
			}
			if !staff {
				return deny(ReasonPostClosed), nil
			}
		}
		return allow(ReasonOwnerAccess), nil

	case ActionModerate:
		// 作者对自己内容的管理动作不要求管理人员身份
		if viewer.ID == item.OwnerID {
			return allow(ReasonOwnerAccess), nil
		}
		staff, err := e.viewerIsStaff(ctx, viewer, item)
		if err != nil {
			return Decision{}, err
		}
		if !staff {
			return deny(ReasonNotStaff), nil
		}
		return allow(ReasonVisible), nil
	}

	return deny(ReasonNotStaff), nil
}

// staffExemption 管理人员豁免检查，仅对社区范围内容生效
func (e *Evaluator) staffExemption(ctx context.Context, viewer Viewer, item ContentItem, enabled bool) (bool, error) {
	if !enabled || item.Scope.Type != ScopeCommunity {
		return false, nil
	}
	return e.viewerIsStaff(ctx, viewer, item)
}

func (e *Evaluator) viewerIsStaff(ctx context.Context, viewer Viewer, item ContentItem) (bool, error) {
	if item.Scope.Type != ScopeCommunity {
		return false, nil
	}
	role, err := e.facts.CommunityRole(ctx, viewer.ID, item.Scope.CommunityID)
	if err != nil {
		return false, factErr("community-role", err)
	}
	return role.IsStaff(), nil
}

// ownerOrStaff 帖子作者或所属社区管理人员
func (e *Evaluator) ownerOrStaff(ctx context.Context, viewer Viewer, item ContentItem) (bool, error) {
	if viewer.ID == item.OwnerID {
		return true, nil
	}
	return e.viewerIsStaff(ctx, viewer, item)
}

func (e *Evaluator) record(d Decision) {
	if e.collector != nil {
		e.collector.RecordVisibilityDecision(d.Allow, string(d.Reason))
	}
}
