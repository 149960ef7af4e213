package service

import (
	"context"
	"errors"

	"openbook_backend/internal/domain/post/model"
	"openbook_backend/internal/domain/post/repository"
	"openbook_backend/internal/domain/visibility"

	"gorm.io/gorm"
)

// AccessDeniedError carries the visibility decision so handlers can map the
// reason to a business code and HTTP status.
type AccessDeniedError struct {
	Decision visibility.Decision
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + string(e.Decision.Reason)
}

// PostService 帖子/评论/表情回应服务接口
type PostService interface {
	CreatePost(ctx context.Context, ownerID, text, scopeType string, circleIDs []string, communityID string) (*model.Post, error)
	GetFeed(ctx context.Context, viewerID string, page, limit int) ([]model.Post, error)
	GetCommunityFeed(ctx context.Context, viewerID, communityID string, page, limit int) ([]model.Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*model.Post, error)
	DeletePost(ctx context.Context, viewerID, postID string) error
	SetClosed(ctx context.Context, viewerID, postID string, closed bool) (*model.Post, error)
	SetCommentsEnabled(ctx context.Context, viewerID, postID string, enabled bool) (*model.Post, error)

	AddComment(ctx context.Context, viewerID, postID, parentID, text string) (*model.Comment, error)
	GetComments(ctx context.Context, viewerID, postID string, page, limit int) ([]model.Comment, error)
	DeleteComment(ctx context.Context, viewerID, commentID string) error

	React(ctx context.Context, viewerID, postID, commentID, emoji string) (*model.Reaction, error)
	RemoveReaction(ctx context.Context, viewerID, postID, commentID, emoji string) error

	MutePost(ctx context.Context, viewerID, postID string) error
	UnmutePost(ctx context.Context, viewerID, postID string) error
}

type postService struct {
	repo    repository.PostRepository
	facts   visibility.FactProvider
	content *visibility.ContentService
}

func NewPostService(repo repository.PostRepository, facts visibility.FactProvider, content *visibility.ContentService) PostService {
	return &postService{
		repo:    repo,
		facts:   facts,
		content: content,
	}
}

// CreatePost 创建帖子。范围三选一且创建后不可变
func (s *postService) CreatePost(ctx context.Context, ownerID, text, scopeType string, circleIDs []string, communityID string) (*model.Post, error) {
	switch scopeType {
	case model.ScopePublicCircle:
		if len(circleIDs) > 0 || communityID != "" {
			return nil, errors.New("public posts cannot carry circles or a community")
		}

	case model.ScopeCustomCircle:
		if communityID != "" {
			return nil, errors.New("circle posts cannot carry a community")
		}
		if len(circleIDs) == 0 {
			return nil, errors.New("circle posts require at least one circle")
		}
		owned, err := s.repo.CountOwnedCircles(ownerID, circleIDs)
		if err != nil {
			return nil, err
		}
		if owned != int64(len(circleIDs)) {
			return nil, errors.New("all circles must belong to the post owner")
		}

	case model.ScopeCommunity:
		if len(circleIDs) > 0 {
			return nil, errors.New("community posts cannot carry circles")
		}
		if communityID == "" {
			return nil, errors.New("community posts require a community")
		}
		role, err := s.facts.CommunityRole(ctx, ownerID, communityID)
		if err != nil {
			return nil, err
		}
		if role == visibility.RoleNone {
			return nil, errors.New("must be a community member to post")
		}
		banned, err := s.facts.IsBanned(ctx, ownerID, communityID)
		if err != nil {
			return nil, err
		}
		if banned {
			return nil, errors.New("banned users cannot post to the community")
		}

	default:
		return nil, errors.New("invalid scope type")
	}

	post := &model.Post{
		OwnerID:         ownerID,
		Text:            text,
		ScopeType:       scopeType,
		CommunityID:     communityID,
		CommentsEnabled: true,
	}
	if err := s.repo.CreatePost(post, circleIDs); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) GetFeed(ctx context.Context, viewerID string, page, limit int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	posts, err := s.repo.GetRecentPosts((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.filterVisible(ctx, viewerID, posts)
}

func (s *postService) GetCommunityFeed(ctx context.Context, viewerID, communityID string, page, limit int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	posts, err := s.repo.GetCommunityPosts(communityID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.filterVisible(ctx, viewerID, posts)
}

// filterVisible 按可见性过滤帖子列表，保持查询返回的顺序
func (s *postService) filterVisible(ctx context.Context, viewerID string, posts []model.Post) ([]model.Post, error) {
	items := make([]visibility.ContentItem, 0, len(posts))
	byID := make(map[string]model.Post, len(posts))
	for i := range posts {
		item, err := s.postItem(&posts[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		byID[posts[i].ID] = posts[i]
	}

	viewer := visibility.Viewer{ID: viewerID}
	visible, err := s.content.ListVisible(ctx, viewer, items)
	if err != nil {
		return nil, err
	}

	result := make([]model.Post, 0, len(visible))
	for _, item := range visible {
		result = append(result, byID[item.ID])
	}
	return result, nil
}

func (s *postService) GetPost(ctx context.Context, viewerID, postID string) (*model.Post, error) {
	post, item, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}

	d, err := s.content.AssertCanView(ctx, visibility.Viewer{ID: viewerID}, item)
	if err != nil {
		return nil, err
	}
	if !d.Allow {
		return nil, &AccessDeniedError{Decision: d}
	}
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, viewerID, postID string) error {
	post, item, err := s.loadPost(postID)
	if err != nil {
		return err
	}

	action := visibility.ActionModerate
	if viewerID == post.OwnerID {
		action = visibility.ActionDeleteOwn
	}
	if err := s.assertAct(ctx, viewerID, item, action); err != nil {
		return err
	}
	return s.repo.DeletePost(postID)
}

func (s *postService) SetClosed(ctx context.Context, viewerID, postID string, closed bool) (*model.Post, error) {
	return s.moderatePost(ctx, viewerID, postID, func(post *model.Post) {
		post.Closed = closed
	})
}

func (s *postService) SetCommentsEnabled(ctx context.Context, viewerID, postID string, enabled bool) (*model.Post, error) {
	return s.moderatePost(ctx, viewerID, postID, func(post *model.Post) {
		post.CommentsEnabled = enabled
	})
}

func (s *postService) moderatePost(ctx context.Context, viewerID, postID string, mutate func(*model.Post)) (*model.Post, error) {
	post, item, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionModerate); err != nil {
		return nil, err
	}

	mutate(post)
	if err := s.repo.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// AddComment 发表评论或回复，最多两级
func (s *postService) AddComment(ctx context.Context, viewerID, postID, parentID, text string) (*model.Comment, error) {
	_, item, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionComment); err != nil {
		return nil, err
	}

	if parentID != "" {
		parent, err := s.repo.GetCommentByID(parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, errors.New("parent comment belongs to another post")
		}
		if parent.ParentID != "" {
			return nil, errors.New("replies to replies are not supported")
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		OwnerID:  viewerID,
		ParentID: parentID,
		Text:     text,
	}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) GetComments(ctx context.Context, viewerID, postID string, page, limit int) ([]model.Comment, error) {
	post, item, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}

	viewer := visibility.Viewer{ID: viewerID}
	d, err := s.content.AssertCanView(ctx, viewer, item)
	if err != nil {
		return nil, err
	}
	if !d.Allow {
		return nil, &AccessDeniedError{Decision: d}
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	comments, err := s.repo.GetCommentsByPost(postID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	// 评论作者也可能被拉黑或停权，逐条过滤
	items := make([]visibility.ContentItem, 0, len(comments))
	byID := make(map[string]model.Comment, len(comments))
	for i := range comments {
		items = append(items, s.commentItem(&comments[i], post, item.Scope))
		byID[comments[i].ID] = comments[i]
	}
	visible, err := s.content.ListVisible(ctx, viewer, items)
	if err != nil {
		return nil, err
	}

	result := make([]model.Comment, 0, len(visible))
	for _, v := range visible {
		result = append(result, byID[v.ID])
	}
	return result, nil
}

func (s *postService) DeleteComment(ctx context.Context, viewerID, commentID string) error {
	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		return err
	}
	post, postItem, err := s.loadPost(comment.PostID)
	if err != nil {
		return err
	}

	item := s.commentItem(comment, post, postItem.Scope)
	action := visibility.ActionModerate
	if viewerID == comment.OwnerID {
		action = visibility.ActionDeleteOwn
	}
	if err := s.assertAct(ctx, viewerID, item, action); err != nil {
		return err
	}
	return s.repo.DeleteComment(commentID)
}

func (s *postService) React(ctx context.Context, viewerID, postID, commentID, emoji string) (*model.Reaction, error) {
	post, item, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionReact); err != nil {
		return nil, err
	}

	if commentID != "" {
		comment, err := s.repo.GetCommentByID(commentID)
		if err != nil {
			return nil, err
		}
		if comment.PostID != post.ID {
			return nil, errors.New("comment belongs to another post")
		}
	}

	if _, err := s.repo.GetReaction(viewerID, postID, commentID, emoji); err == nil {
		return nil, errors.New("reaction already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reaction := &model.Reaction{
		PostID:    postID,
		CommentID: commentID,
		OwnerID:   viewerID,
		Emoji:     emoji,
	}
	if err := s.repo.CreateReaction(reaction); err != nil {
		return nil, err
	}
	return reaction, nil
}

func (s *postService) RemoveReaction(ctx context.Context, viewerID, postID, commentID, emoji string) error {
	reaction, err := s.repo.GetReaction(viewerID, postID, commentID, emoji)
	if err != nil {
		return err
	}
	_, postItem, err := s.loadPost(postID)
	if err != nil {
		return err
	}

	item := visibility.ContentItem{
		ID:      reaction.ID,
		Kind:    visibility.KindReaction,
		OwnerID: reaction.OwnerID,
		Scope:   postItem.Scope,
		Closed:  postItem.Closed,
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionDeleteOwn); err != nil {
		return err
	}
	return s.repo.DeleteReaction(reaction.ID)
}

func (s *postService) MutePost(ctx context.Context, viewerID, postID string) error {
	_, item, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionMute); err != nil {
		return err
	}

	muted, err := s.repo.HasMute(postID, viewerID)
	if err != nil {
		return err
	}
	if muted {
		return errors.New("post already muted")
	}
	return s.repo.CreateMute(&model.PostMute{PostID: postID, UserID: viewerID})
}

func (s *postService) UnmutePost(ctx context.Context, viewerID, postID string) error {
	_, item, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if err := s.assertAct(ctx, viewerID, item, visibility.ActionMute); err != nil {
		return err
	}
	return s.repo.DeleteMute(postID, viewerID)
}

// loadPost 加载帖子及其可见性表示。软删除的帖子也会被加载，
// 由评估器以 Deleted 原因拒绝而不是直接 404
func (s *postService) loadPost(postID string) (*model.Post, visibility.ContentItem, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		return nil, visibility.ContentItem{}, err
	}
	item, err := s.postItem(post)
	if err != nil {
		return nil, visibility.ContentItem{}, err
	}
	return post, item, nil
}

func (s *postService) postItem(post *model.Post) (visibility.ContentItem, error) {
	scope := visibility.Scope{CommunityID: post.CommunityID}
	switch post.ScopeType {
	case model.ScopePublicCircle:
		scope.Type = visibility.ScopePublicCircle
	case model.ScopeCustomCircle:
		scope.Type = visibility.ScopeCustomCircle
		circleIDs, err := s.repo.GetPostCircleIDs(post.ID)
		if err != nil {
			return visibility.ContentItem{}, err
		}
		scope.CircleIDs = circleIDs
	case model.ScopeCommunity:
		scope.Type = visibility.ScopeCommunity
	}

	return visibility.ContentItem{
		ID:              post.ID,
		Kind:            visibility.KindPost,
		OwnerID:         post.OwnerID,
		Scope:           scope,
		Closed:          post.Closed,
		CommentsEnabled: post.CommentsEnabled,
	}, nil
}

// commentItem 评论继承父帖的范围和关闭状态
func (s *postService) commentItem(comment *model.Comment, post *model.Post, scope visibility.Scope) visibility.ContentItem {
	return visibility.ContentItem{
		ID:              comment.ID,
		Kind:            visibility.KindComment,
		OwnerID:         comment.OwnerID,
		Scope:           scope,
		Closed:          post.Closed,
		CommentsEnabled: post.CommentsEnabled,
	}
}

func (s *postService) assertAct(ctx context.Context, viewerID string, item visibility.ContentItem, action visibility.Action) error {
	d, err := s.content.AssertCanAct(ctx, visibility.Viewer{ID: viewerID}, item, action)
	if err != nil {
		return err
	}
	if !d.Allow {
		return &AccessDeniedError{Decision: d}
	}
	return nil
}
