package visibility

import (
	"context"
)

// ContentService 内容列表过滤和动作门禁的统一入口，供各内容端点调用
type ContentService struct {
	evaluator *Evaluator
}

func NewContentService(evaluator *Evaluator) *ContentService {
	return &ContentService{evaluator: evaluator}
}

// ListVisible 过滤出 viewer 可见的内容，保持输入顺序。
// 排序和分页是调用方的职责
func (s *ContentService) ListVisible(ctx context.Context, viewer Viewer, items []ContentItem) ([]ContentItem, error) {
	visible := make([]ContentItem, 0, len(items))
	for _, item := range items {
		d, err := s.evaluator.CanView(ctx, viewer, item)
		if err != nil {
			return nil, err
		}
		if d.Allow {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// AssertCanView 单条内容的可见性判定
func (s *ContentService) AssertCanView(ctx context.Context, viewer Viewer, item ContentItem) (Decision, error) {
	return s.evaluator.CanView(ctx, viewer, item)
}

// AssertCanAct 动作门禁判定，调用方将拒绝原因映射为 HTTP 层结果
func (s *ContentService) AssertCanAct(ctx context.Context, viewer Viewer, item ContentItem, action Action) (Decision, error) {
	return s.evaluator.CanAct(ctx, viewer, item, action)
}
