package visibility

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFacts is an in-memory FactProvider for deterministic evaluator tests.
type fakeFacts struct {
	blocks      map[string]bool             // "a|b" both directions inserted
	roles       map[string]Role             // "user|community"
	bans        map[string]bool             // "user|community"
	deleted     map[string]bool             // "kind|id"
	circles     map[string]bool             // "owner|viewer|circle"
	suspended   map[string]bool             // user
	privacy     map[string]string           // community
	moderation  map[string]ModerationStatus // "kind|id"
	failingFact string
}

func newFakeFacts() *fakeFacts {
	return &fakeFacts{
		blocks:     map[string]bool{},
		roles:      map[string]Role{},
		bans:       map[string]bool{},
		deleted:    map[string]bool{},
		circles:    map[string]bool{},
		suspended:  map[string]bool{},
		privacy:    map[string]string{},
		moderation: map[string]ModerationStatus{},
	}
}

func (f *fakeFacts) block(a, b string) {
	f.blocks[a+"|"+b] = true
	f.blocks[b+"|"+a] = true
}

func (f *fakeFacts) role(user, community string, r Role) { f.roles[user+"|"+community] = r }
func (f *fakeFacts) ban(user, community string)          { f.bans[user+"|"+community] = true }
func (f *fakeFacts) softDelete(kind Kind, id string)     { f.deleted[string(kind)+"|"+id] = true }
func (f *fakeFacts) connect(owner, viewer, circle string) {
	f.circles[owner+"|"+viewer+"|"+circle] = true
}

func (f *fakeFacts) IsBlocked(_ context.Context, viewerID, otherID string) (bool, error) {
	if f.failingFact == "block" {
		return false, errors.New("storage down")
	}
	return f.blocks[viewerID+"|"+otherID], nil
}

func (f *fakeFacts) CommunityRole(_ context.Context, userID, communityID string) (Role, error) {
	if f.failingFact == "role" {
		return RoleNone, errors.New("storage down")
	}
	if r, ok := f.roles[userID+"|"+communityID]; ok {
		return r, nil
	}
	return RoleNone, nil
}

func (f *fakeFacts) IsBanned(_ context.Context, userID, communityID string) (bool, error) {
	return f.bans[userID+"|"+communityID], nil
}

func (f *fakeFacts) IsSoftDeleted(_ context.Context, kind Kind, itemID string) (bool, error) {
	if f.failingFact == "soft-delete" {
		return false, errors.New("storage down")
	}
	return f.deleted[string(kind)+"|"+itemID], nil
}

func (f *fakeFacts) ModerationStatus(_ context.Context, kind Kind, itemID string) (ModerationStatus, error) {
	if s, ok := f.moderation[string(kind)+"|"+itemID]; ok {
		return s, nil
	}
	return ModerationNone, nil
}

func (f *fakeFacts) ConnectedInCircles(_ context.Context, ownerID, viewerID string, circleIDs []string) (bool, error) {
	for _, id := range circleIDs {
		if f.circles[ownerID+"|"+viewerID+"|"+id] {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFacts) HasActiveSuspension(_ context.Context, userID string) (bool, error) {
	return f.suspended[userID], nil
}

func (f *fakeFacts) CommunityPrivacy(_ context.Context, communityID string) (string, error) {
	if p, ok := f.privacy[communityID]; ok {
		return p, nil
	}
	return PrivacyPublic, nil
}

func publicPost(id, owner string) ContentItem {
	return ContentItem{
		ID:              id,
		Kind:            KindPost,
		OwnerID:         owner,
		Scope:           Scope{Type: ScopePublicCircle},
		CommentsEnabled: true,
	}
}

func communityPost(id, owner, community string) ContentItem {
	return ContentItem{
		ID:              id,
		Kind:            KindPost,
		OwnerID:         owner,
		Scope:           Scope{Type: ScopeCommunity, CommunityID: community},
		CommentsEnabled: true,
	}
}

func circlePost(id, owner string, circleIDs ...string) ContentItem {
	return ContentItem{
		ID:              id,
		Kind:            KindPost,
		OwnerID:         owner,
		Scope:           Scope{Type: ScopeCustomCircle, CircleIDs: circleIDs},
		CommentsEnabled: true,
	}
}

func TestCanView_OwnerAndSoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner sees own content", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.True(t, d.Allow)
		assert.Equal(t, ReasonOwnerAccess, d.Reason)
	})

	t.Run("soft deleted denies everyone including owner", func(t *testing.T) {
		facts := newFakeFacts()
		facts.softDelete(KindPost, "p1")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		for _, viewer := range []string{"alice", "bob"} {
			d, err := e.CanView(ctx, Viewer{ID: viewer}, publicPost("p1", "alice"))
			require.NoError(t, err)
			assert.False(t, d.Allow)
			assert.Equal(t, ReasonDeleted, d.Reason)
		}
	})

	t.Run("soft deleted denies independent of block and community state", func(t *testing.T) {
		facts := newFakeFacts()
		facts.softDelete(KindPost, "p1")
		facts.block("bob", "alice")
		facts.ban("bob", "c1")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "bob"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonDeleted), d)
	})

	t.Run("owner sees own soft deleted content when policy enables it", func(t *testing.T) {
		facts := newFakeFacts()
		facts.softDelete(KindPost, "p1")
		policy := DefaultPolicy()
		policy.OwnerSeesSoftDeleted = true
		e := NewEvaluator(facts, policy, nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.Equal(t, allow(ReasonOwnerAccess), d)

		d, err = e.CanView(ctx, Viewer{ID: "bob"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonDeleted), d)
	})

	t.Run("owner bypasses block and circle checks", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "alice")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, circlePost("p1", "alice", "circle-1"))
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})
}

func TestCanView_Suspension(t *testing.T) {
	ctx := context.Background()

	t.Run("suspended owner content hidden", func(t *testing.T) {
		facts := newFakeFacts()
		facts.suspended["alice"] = true
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "bob"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonOwnerSuspended), d)
	})

	t.Run("community staff still sees suspended owner content", func(t *testing.T) {
		facts := newFakeFacts()
		facts.suspended["alice"] = true
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "mod"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("staff exemption disabled by policy", func(t *testing.T) {
		facts := newFakeFacts()
		facts.suspended["alice"] = true
		facts.role("mod", "c1", RoleModerator)
		policy := DefaultPolicy()
		policy.StaffSeesSuspended = false
		e := NewEvaluator(facts, policy, nil)

		d, err := e.CanView(ctx, Viewer{ID: "mod"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonOwnerSuspended), d)
	})

	t.Run("no staff exemption outside communities", func(t *testing.T) {
		facts := newFakeFacts()
		facts.suspended["alice"] = true
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "mod"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonOwnerSuspended), d)
	})
}

func TestCanView_Scopes(t *testing.T) {
	ctx := context.Background()

	t.Run("public post visible without membership", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "stranger"}, publicPost("p1", "alice"))
		require.NoError(t, err)
		assert.Equal(t, allow(ReasonVisible), d)
	})

	t.Run("circle post requires matching circle connection", func(t *testing.T) {
		facts := newFakeFacts()
		facts.connect("alice", "bob", "friends")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "bob"}, circlePost("p1", "alice", "friends"))
		require.NoError(t, err)
		assert.True(t, d.Allow)

		d, err = e.CanView(ctx, Viewer{ID: "bob"}, circlePost("p2", "alice", "family"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonNotInCircle), d)

		d, err = e.CanView(ctx, Viewer{ID: "carol"}, circlePost("p1", "alice", "friends"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonNotInCircle), d)
	})

	t.Run("private community requires membership", func(t *testing.T) {
		facts := newFakeFacts()
		facts.privacy["c1"] = PrivacyPrivate
		facts.role("member", "c1", RoleMember)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "stranger"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonPrivateCommunityNotMember), d)

		d, err = e.CanView(ctx, Viewer{ID: "member"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("public community visible to non members", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "stranger"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("banned viewer denied even as member", func(t *testing.T) {
		// Scenario B: ban denies before the block check runs
		facts := newFakeFacts()
		facts.role("bob", "c1", RoleMember)
		facts.ban("bob", "c1")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "bob"}, communityPost("p1", "alice", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBanned), d)
	})
}

func TestCanView_Blocks(t *testing.T) {
	ctx := context.Background()

	t.Run("block denies public post either direction", func(t *testing.T) {
		// Scenario A plus the symmetry property
		facts := newFakeFacts()
		facts.block("alice", "bob")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, publicPost("p1", "bob"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)

		d, err = e.CanView(ctx, Viewer{ID: "bob"}, publicPost("p2", "alice"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)
	})

	t.Run("block denies circle post without staff exception", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "bob")
		facts.connect("bob", "alice", "friends")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, circlePost("p1", "bob", "friends"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)
	})

	t.Run("community staff owner exempt from block", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "mod")
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, communityPost("p1", "mod", "c1"))
		require.NoError(t, err)
		assert.Equal(t, allow(ReasonVisible), d)
	})

	t.Run("staff block exemption disabled by policy", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "mod")
		facts.role("mod", "c1", RoleModerator)
		policy := DefaultPolicy()
		policy.StaffBlockExemption = false
		e := NewEvaluator(facts, policy, nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, communityPost("p1", "mod", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)
	})

	t.Run("non staff community owner still blocked", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "bob")
		facts.role("bob", "c1", RoleMember)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, communityPost("p1", "bob", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)
	})

	t.Run("private membership gate precedes block and staff exception", func(t *testing.T) {
		// Scenario C: admin-owned private community post, viewer not a member
		facts := newFakeFacts()
		facts.privacy["c1"] = PrivacyPrivate
		facts.role("admin", "c1", RoleAdministrator)
		facts.block("alice", "admin")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanView(ctx, Viewer{ID: "alice"}, communityPost("p1", "admin", "c1"))
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonPrivateCommunityNotMember), d)
	})
}

func TestCanView_Idempotence(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFacts()
	facts.block("alice", "bob")
	facts.role("mod", "c1", RoleModerator)
	e := NewEvaluator(facts, DefaultPolicy(), nil)

	cases := []struct {
		viewer string
		item   ContentItem
	}{
		{"alice", publicPost("p1", "bob")},
		{"alice", communityPost("p2", "mod", "c1")},
		{"carol", circlePost("p3", "alice", "friends")},
	}

	for _, tc := range cases {
		first, err := e.CanView(ctx, Viewer{ID: tc.viewer}, tc.item)
		require.NoError(t, err)
		second, err := e.CanView(ctx, Viewer{ID: tc.viewer}, tc.item)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestCanAct(t *testing.T) {
	ctx := context.Background()

	t.Run("comment requires view access", func(t *testing.T) {
		facts := newFakeFacts()
		facts.block("alice", "bob")
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanAct(ctx, Viewer{ID: "alice"}, publicPost("p1", "bob"), ActionComment)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonBlocked), d)
	})

	t.Run("closed post blocks comment except owner and staff", func(t *testing.T) {
		// Scenario D
		facts := newFakeFacts()
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		item := communityPost("p1", "alice", "c1")
		item.Closed = true

		d, err := e.CanAct(ctx, Viewer{ID: "bob"}, item, ActionComment)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonPostClosed), d)

		d, err = e.CanAct(ctx, Viewer{ID: "mod"}, item, ActionComment)
		require.NoError(t, err)
		assert.True(t, d.Allow)

		d, err = e.CanAct(ctx, Viewer{ID: "alice"}, item, ActionComment)
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("disabled comments gate with owner and staff bypass", func(t *testing.T) {
		facts := newFakeFacts()
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		item := communityPost("p1", "alice", "c1")
		item.CommentsEnabled = false

		d, err := e.CanAct(ctx, Viewer{ID: "bob"}, item, ActionComment)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonCommentsDisabled), d)

		d, err = e.CanAct(ctx, Viewer{ID: "alice"}, item, ActionComment)
		require.NoError(t, err)
		assert.True(t, d.Allow)

		d, err = e.CanAct(ctx, Viewer{ID: "mod"}, item, ActionComment)
		require.NoError(t, err)
		assert.True(t, d.Allow)

		// disabled comments do not gate reactions
		d, err = e.CanAct(ctx, Viewer{ID: "bob"}, item, ActionReact)
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("closed post gates react and mute", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		item := publicPost("p1", "alice")
		item.Closed = true

		for _, action := range []Action{ActionReact, ActionMute} {
			d, err := e.CanAct(ctx, Viewer{ID: "bob"}, item, action)
			require.NoError(t, err)
			assert.Equal(t, deny(ReasonPostClosed), d, string(action))
		}
	})

	t.Run("delete own requires ownership", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanAct(ctx, Viewer{ID: "bob"}, publicPost("p1", "alice"), ActionDeleteOwn)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonNotOwner), d)

		d, err = e.CanAct(ctx, Viewer{ID: "alice"}, publicPost("p1", "alice"), ActionDeleteOwn)
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("closed post freezes delete own even for the owner", func(t *testing.T) {
		facts := newFakeFacts()
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		comment := ContentItem{
			ID:      "cm1",
			Kind:    KindComment,
			OwnerID: "alice",
			Scope:   Scope{Type: ScopeCommunity, CommunityID: "c1"},
			Closed:  true,
		}

		d, err := e.CanAct(ctx, Viewer{ID: "alice"}, comment, ActionDeleteOwn)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonPostClosed), d)

		staffComment := comment
		staffComment.OwnerID = "mod"
		d, err = e.CanAct(ctx, Viewer{ID: "mod"}, staffComment, ActionDeleteOwn)
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})

	t.Run("moderate requires staff or ownership", func(t *testing.T) {
		facts := newFakeFacts()
		facts.role("mod", "c1", RoleModerator)
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		item := communityPost("p1", "alice", "c1")

		d, err := e.CanAct(ctx, Viewer{ID: "bob"}, item, ActionModerate)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonNotStaff), d)

		d, err = e.CanAct(ctx, Viewer{ID: "mod"}, item, ActionModerate)
		require.NoError(t, err)
		assert.True(t, d.Allow)

		d, err = e.CanAct(ctx, Viewer{ID: "alice"}, item, ActionModerate)
		require.NoError(t, err)
		assert.Equal(t, allow(ReasonOwnerAccess), d)
	})

	t.Run("moderate denied outside community for non owner", func(t *testing.T) {
		facts := newFakeFacts()
		e := NewEvaluator(facts, DefaultPolicy(), nil)

		d, err := e.CanAct(ctx, Viewer{ID: "bob"}, publicPost("p1", "alice"), ActionModerate)
		require.NoError(t, err)
		assert.Equal(t, deny(ReasonNotStaff), d)
	})
}

func TestEvaluationError(t *testing.T) {
	ctx := context.Background()

	facts := newFakeFacts()
	facts.failingFact = "soft-delete"
	e := NewEvaluator(facts, DefaultPolicy(), nil)

	_, err := e.CanView(ctx, Viewer{ID: "bob"}, publicPost("p1", "alice"))
	require.Error(t, err)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "soft-delete", evalErr.Fact)
	assert.NotNil(t, evalErr.Unwrap())
}
