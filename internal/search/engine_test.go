package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayatana-go/menuhud/internal/search"
	"github.com/ayatana-go/menuhud/internal/settings"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

type fakeNode struct {
	peer     string
	path     string
	id       int32
	label    string
	hasLabel bool
	enabled  bool
	visible  bool
	children []menumodel.MenuHandle
}

func (n *fakeNode) BusName() string                  { return n.peer }
func (n *fakeNode) ObjectPath() string                { return n.path }
func (n *fakeNode) IsRoot() bool                      { return false }
func (n *fakeNode) Enabled() bool                     { return n.enabled }
func (n *fakeNode) Visible() bool                     { return n.visible }
func (n *fakeNode) ID() int32                          { return n.id }
func (n *fakeNode) Children() []menumodel.MenuHandle  { return n.children }
func (n *fakeNode) Activate(uint32) error              { return nil }
func (n *fakeNode) Label() (string, bool)              { return n.label, n.hasLabel }
func (n *fakeNode) ItemType() (string, bool)           { return "", false }

func leaf(peer, path, label string) *fakeNode {
	return &fakeNode{peer: peer, path: path, enabled: true, visible: true, label: label, hasLabel: true}
}

type fakeCache struct {
	entries map[menumodel.MenuKey]menumodel.MenuHandle
}

func (c *fakeCache) Lookup(key menumodel.MenuKey) (menumodel.MenuHandle, bool) {
	h, ok := c.entries[key]
	return h, ok
}
func (c *fakeCache) Observe(context.Context, string, string) error { return nil }
func (c *fakeCache) Len() int                                      { return len(c.entries) }

type fakeIndicatorSource struct {
	list []menumodel.IndicatorDescriptor
}

func (s *fakeIndicatorSource) Indicators() []menumodel.IndicatorDescriptor { return s.list }

func ptr(s string) *string { return &s }

func TestSearchMergesAppAndIndicatorResults(t *testing.T) {
	cfg := settings.Default()

	appRoot := &fakeNode{peer: ":1.1", path: "/app", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.1", "/app", "Copy")}}
	indRoot := &fakeNode{peer: ":1.2", path: "/ind", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.2", "/ind", "Copy Link")}}

	cache := &fakeCache{entries: map[menumodel.MenuKey]menumodel.MenuHandle{
		{Peer: ":1.1", Path: "/app"}: appRoot,
		{Peer: ":1.2", Path: "/ind"}: indRoot,
	}}
	indicators := &fakeIndicatorSource{list: []menumodel.IndicatorDescriptor{
		{BusName: ":1.2", ObjectPath: "/ind", DisplayName: "Clipboard", LabelPrefix: "Clipboard"},
	}}

	eng := search.New(cache, indicators, cfg)
	results := eng.Search(context.Background(), ptr("copy"), ":1.1", "/app")

	require.Len(t, results, 2)
	assert.Equal(t, "Copy", results[0].DisplayString, "on equal scaled distance the app match must stay ahead of the indicator match")
	assert.True(t, results[1].FromIndicator())
}

func TestSearchSkipsIndicatorsOnEmptyQuery(t *testing.T) {
	cfg := settings.Default()

	appRoot := &fakeNode{peer: ":1.1", path: "/app", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.1", "/app", "File")}}
	indRoot := &fakeNode{peer: ":1.2", path: "/ind", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.2", "/ind", "Clock")}}

	cache := &fakeCache{entries: map[menumodel.MenuKey]menumodel.MenuHandle{
		{Peer: ":1.1", Path: "/app"}: appRoot,
		{Peer: ":1.2", Path: "/ind"}: indRoot,
	}}
	indicators := &fakeIndicatorSource{list: []menumodel.IndicatorDescriptor{
		{BusName: ":1.2", ObjectPath: "/ind", DisplayName: "Clock"},
	}}

	eng := search.New(cache, indicators, cfg)
	results := eng.Search(context.Background(), nil, ":1.1", "/app")

	require.Len(t, results, 1)
	assert.Equal(t, "File", results[0].DisplayString)
}

func TestSearchIndicatorDistanceScaledByHalf(t *testing.T) {
	cfg := settings.Default()

	appRoot := &fakeNode{peer: ":1.1", path: "/app", enabled: true, visible: true}
	indRoot := &fakeNode{peer: ":1.2", path: "/ind", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.2", "/ind", "Copy")}}

	cache := &fakeCache{entries: map[menumodel.MenuKey]menumodel.MenuHandle{
		{Peer: ":1.1", Path: "/app"}: appRoot,
		{Peer: ":1.2", Path: "/ind"}: indRoot,
	}}
	indicators := &fakeIndicatorSource{list: []menumodel.IndicatorDescriptor{
		{BusName: ":1.2", ObjectPath: "/ind", DisplayName: "Clipboard"},
	}}

	eng := search.New(cache, indicators, cfg)
	results := eng.Search(context.Background(), ptr("copy"), ":1.1", "/app")

	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Distance, "raw 1 (case-only swap) plus 1*50/100 truncates to 1")
}

func TestSearchSkipsIndicatorSharingFocusedAddress(t *testing.T) {
	cfg := settings.Default()

	appRoot := &fakeNode{peer: ":1.1", path: "/app", enabled: true, visible: true,
		children: []menumodel.MenuHandle{leaf(":1.1", "/app", "Copy")}}

	cache := &fakeCache{entries: map[menumodel.MenuKey]menumodel.MenuHandle{
		{Peer: ":1.1", Path: "/app"}: appRoot,
	}}
	indicators := &fakeIndicatorSource{list: []menumodel.IndicatorDescriptor{
		{BusName: ":1.1", ObjectPath: "/app", DisplayName: "Duplicate"},
	}}

	eng := search.New(cache, indicators, cfg)
	results := eng.Search(context.Background(), ptr("copy"), ":1.1", "/app")

	require.Len(t, results, 1, "an indicator sharing the focused peer/path must not be walked twice")
	assert.False(t, results[0].FromIndicator())
}

func TestSearchMissingCacheEntryYieldsNoAppResults(t *testing.T) {
	cfg := settings.Default()
	cache := &fakeCache{entries: map[menumodel.MenuKey]menumodel.MenuHandle{}}
	eng := search.New(cache, nil, cfg)

	results := eng.Search(context.Background(), ptr("anything"), ":1.1", "/app")
	assert.Empty(t, results)
}
