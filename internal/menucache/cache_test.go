package menucache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayatana-go/menuhud/internal/menucache"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

type stubHandle struct {
	path string
}

func (s *stubHandle) BusName() string               { return "peer" }
func (s *stubHandle) ObjectPath() string             { return s.path }
func (s *stubHandle) IsRoot() bool                   { return true }
func (s *stubHandle) Enabled() bool                  { return true }
func (s *stubHandle) Visible() bool                  { return true }
func (s *stubHandle) Label() (string, bool)          { return "", false }
func (s *stubHandle) ItemType() (string, bool)       { return "", false }
func (s *stubHandle) ID() int32                      { return 0 }
func (s *stubHandle) Children() []menumodel.MenuHandle { return nil }
func (s *stubHandle) Activate(uint32) error          { return nil }

func TestObserveBuildsOnFirstSight(t *testing.T) {
	var calls int32
	c := menucache.New(func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
		atomic.AddInt32(&calls, 1)
		return &stubHandle{path: path}, nil
	})

	require.NoError(t, c.Observe(context.Background(), ":1.1", "/menu"))
	require.NoError(t, c.Observe(context.Background(), ":1.1", "/menu"))

	assert.Equal(t, int32(1), calls, "a known key must not rebuild")
	assert.Equal(t, 1, c.Len())
}

func TestLookupMissReturnsFalse(t *testing.T) {
	c := menucache.New(func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
		return &stubHandle{path: path}, nil
	})

	_, ok := c.Lookup(menumodel.MenuKey{Peer: ":1.1", Path: "/menu"})
	assert.False(t, ok)
}

func TestLookupHitAfterObserve(t *testing.T) {
	c := menucache.New(func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
		return &stubHandle{path: path}, nil
	})

	key := menumodel.MenuKey{Peer: ":1.1", Path: "/menu"}
	require.NoError(t, c.Observe(context.Background(), key.Peer, key.Path))

	h, ok := c.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, "/menu", h.ObjectPath())
}

func TestObserveDistinctKeysAreIndependent(t *testing.T) {
	c := menucache.New(func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
		return &stubHandle{path: path}, nil
	})

	require.NoError(t, c.Observe(context.Background(), ":1.1", "/menu/one"))
	require.NoError(t, c.Observe(context.Background(), ":1.1", "/menu/two"))
	require.NoError(t, c.Observe(context.Background(), ":1.2", "/menu/one"))

	assert.Equal(t, 3, c.Len(), "peer and path together form the key, conjunctively")
}

func TestObservePropagatesBuildError(t *testing.T) {
	wantErr := errors.New("boom")
	c := menucache.New(func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
		return nil, wantErr
	})

	err := c.Observe(context.Background(), ":1.1", "/menu")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.Len(), "a failed build must not leave a half-populated entry")
}
