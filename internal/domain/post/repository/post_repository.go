package repository

import (
	"openbook_backend/internal/domain/post/model"

	"gorm.io/gorm"
)

type PostRepository interface {
	CreatePost(post *model.Post, circleIDs []string) error
	GetPostByID(id string) (*model.Post, error)
	GetRecentPosts(offset, limit int) ([]model.Post, error)
	GetCommunityPosts(communityID string, offset, limit int) ([]model.Post, error)
	GetPostCircleIDs(postID string) ([]string, error)
	UpdatePost(post *model.Post) error
	DeletePost(id string) error
	CountOwnedCircles(ownerID string, circleIDs []string) (int64, error)

	CreateComment(comment *model.Comment) error
	GetCommentByID(id string) (*model.Comment, error)
	GetCommentsByPost(postID string, offset, limit int) ([]model.Comment, error)
	DeleteComment(id string) error

	CreateReaction(reaction *model.Reaction) error
	GetReaction(ownerID, postID, commentID, emoji string) (*model.Reaction, error)
	GetReactionsByPost(postID string) ([]model.Reaction, error)
	DeleteReaction(id string) error

	CreateMute(mute *model.PostMute) error
	DeleteMute(postID, userID string) error
	HasMute(postID, userID string) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreatePost 帖子和圈子关联在同一事务中写入
func (r *postRepository) CreatePost(post *model.Post, circleIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, circleID := range circleIDs {
			if err := tx.Create(&model.PostCircle{
				PostID:   post.ID,
				CircleID: circleID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postRepository) GetPostByID(id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.Unscoped().Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetRecentPosts(offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetCommunityPosts(communityID string, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.Where("community_id = ?", communityID).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetPostCircleIDs(postID string) ([]string, error) {
	var circleIDs []string
	err := r.db.Model(&model.PostCircle{}).
		Where("post_id = ?", postID).
		Pluck("circle_id", &circleIDs).Error
	return circleIDs, err
}

func (r *postRepository) UpdatePost(post *model.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) DeletePost(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Post{}).Error
}

// CountOwnedCircles 统计属于指定用户的圈子数量，用于发帖时的圈子归属校验
func (r *postRepository) CountOwnedCircles(ownerID string, circleIDs []string) (int64, error) {
	var count int64
	err := r.db.Table("circles").
		Where("id IN ? AND owner_id = ? AND deleted_at IS NULL", circleIDs, ownerID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CreateComment(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *postRepository) GetCommentByID(id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *postRepository) GetCommentsByPost(postID string, offset, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Where("post_id = ?", postID).
		Order("created_at asc").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, err
}

func (r *postRepository) DeleteComment(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Comment{}).Error
}

func (r *postRepository) CreateReaction(reaction *model.Reaction) error {
	return r.db.Create(reaction).Error
}

func (r *postRepository) GetReaction(ownerID, postID, commentID, emoji string) (*model.Reaction, error) {
	var reaction model.Reaction
	if err := r.db.Where("owner_id = ? AND post_id = ? AND comment_id = ? AND emoji = ?",
		ownerID, postID, commentID, emoji).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *postRepository) GetReactionsByPost(postID string) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.Where("post_id = ?", postID).Order("created_at asc").Find(&reactions).Error
	return reactions, err
}

func (r *postRepository) DeleteReaction(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Reaction{}).Error
}

func (r *postRepository) CreateMute(mute *model.PostMute) error {
	return r.db.Create(mute).Error
}

func (r *postRepository) DeleteMute(postID, userID string) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostMute{}).Error
}

func (r *postRepository) HasMute(postID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.PostMute{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}
