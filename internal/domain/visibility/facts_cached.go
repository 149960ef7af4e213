package visibility

import (
	"context"
	"strconv"
	"time"

	"openbook_backend/pkg/cache"
	"openbook_backend/pkg/metrics"
)

const cacheName = "visibility_facts"

// CachedFactProvider 带缓存的事实查询装饰器。
// 缓存读写失败直接回源，缓存故障不影响决策可用性
type CachedFactProvider struct {
	source    FactProvider
	cache     cache.CacheService
	ttl       time.Duration
	collector *metrics.MetricsCollector
}

func NewCachedFactProvider(source FactProvider, c cache.CacheService, ttl time.Duration, collector *metrics.MetricsCollector) *CachedFactProvider {
	return &CachedFactProvider{
		source:    source,
		cache:     c,
		ttl:       ttl,
		collector: collector,
	}
}

func (p *CachedFactProvider) IsBlocked(ctx context.Context, viewerID, otherID string) (bool, error) {
	// 拉黑关系双向等价，键按字典序归一
	a, b := viewerID, otherID
	if b < a {
		a, b = b, a
	}
	return p.cachedBool(ctx, "vis:blocked:"+a+":"+b, func() (bool, error) {
		return p.source.IsBlocked(ctx, viewerID, otherID)
	})
}

func (p *CachedFactProvider) CommunityRole(ctx context.Context, userID, communityID string) (Role, error) {
	key := "vis:role:" + communityID + ":" + userID

	var cached int
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.hit()
		return Role(cached), nil
	}
	p.miss()

	role, err := p.source.CommunityRole(ctx, userID, communityID)
	if err != nil {
		return RoleNone, err
	}
	p.cache.Set(ctx, key, int(role), p.ttl)
	return role, nil
}

func (p *CachedFactProvider) IsBanned(ctx context.Context, userID, communityID string) (bool, error) {
	return p.cachedBool(ctx, "vis:banned:"+communityID+":"+userID, func() (bool, error) {
		return p.source.IsBanned(ctx, userID, communityID)
	})
}

func (p *CachedFactProvider) IsSoftDeleted(ctx context.Context, kind Kind, itemID string) (bool, error) {
	return p.cachedBool(ctx, "vis:deleted:"+string(kind)+":"+itemID, func() (bool, error) {
		return p.source.IsSoftDeleted(ctx, kind, itemID)
	})
}

// ModerationStatus 不缓存，审核状态变化需要立即生效
func (p *CachedFactProvider) ModerationStatus(ctx context.Context, kind Kind, itemID string) (ModerationStatus, error) {
	return p.source.ModerationStatus(ctx, kind, itemID)
}

// ConnectedInCircles 不缓存，键空间随圈子组合膨胀且命中率低
func (p *CachedFactProvider) ConnectedInCircles(ctx context.Context, ownerID, viewerID string, circleIDs []string) (bool, error) {
	return p.source.ConnectedInCircles(ctx, ownerID, viewerID, circleIDs)
}

func (p *CachedFactProvider) HasActiveSuspension(ctx context.Context, userID string) (bool, error) {
	return p.cachedBool(ctx, "vis:suspended:"+userID, func() (bool, error) {
		return p.source.HasActiveSuspension(ctx, userID)
	})
}

func (p *CachedFactProvider) CommunityPrivacy(ctx context.Context, communityID string) (string, error) {
	key := "vis:privacy:" + communityID

	var cached string
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.hit()
		return cached, nil
	}
	p.miss()

	privacy, err := p.source.CommunityPrivacy(ctx, communityID)
	if err != nil {
		return "", err
	}
	p.cache.Set(ctx, key, privacy, p.ttl)
	return privacy, nil
}

func (p *CachedFactProvider) cachedBool(ctx context.Context, key string, load func() (bool, error)) (bool, error) {
	// 缓存故障和未命中同样处理，直接回源
	var cached string
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		if v, perr := strconv.ParseBool(cached); perr == nil {
			p.hit()
			return v, nil
		}
	}
	p.miss()

	v, err := load()
	if err != nil {
		return false, err
	}
	p.cache.Set(ctx, key, strconv.FormatBool(v), p.ttl)
	return v, nil
}

func (p *CachedFactProvider) hit() {
	if p.collector != nil {
		p.collector.RecordCacheHit(cacheName)
	}
}

func (p *CachedFactProvider) miss() {
	if p.collector != nil {
		p.collector.RecordCacheMiss(cacheName)
	}
}
