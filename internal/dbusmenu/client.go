// Package dbusmenu implements menumodel.MenuHandle against a live
// com.canonical.dbusmenu peer over the D-Bus session bus: it builds a menu
// tree from GetLayout, exposes it as the narrow MenuHandle interface the
// walker and activation components depend on, and issues Event calls back
// to the peer on activation.
package dbusmenu

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

const (
	ifaceMenu    = "com.canonical.dbusmenu"
	methodLayout = ifaceMenu + ".GetLayout"
	methodEvent  = ifaceMenu + ".Event"

	propLabel   = "label"
	propType    = "type"
	propEnabled = "enabled"
	propVisible = "visible"
)

// rawItem mirrors the dbusmenu wire struct "(ia{sv}av)": an item id, its
// property bag, and its children as nested variants of the same shape.
type rawItem struct {
	ID         int32
	Properties map[string]dbus.Variant
	Children   []dbus.Variant
}

func decodeRawItem(v interface{}) (rawItem, error) {
	var item rawItem
	if err := dbus.Store([]interface{}{v}, &item); err != nil {
		return rawItem{}, fmt.Errorf("dbusmenu: decode layout item: %w", err)
	}
	return item, nil
}

// Client builds menuNode trees for any (peer, path) over one connection.
// It satisfies menucache.Builder via New.
type Client struct {
	conn *dbus.Conn
}

// NewClient wraps an already-connected session bus connection.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{conn: conn}
}

// New fetches the full layout for (peer, path) and returns its root as a
// menumodel.MenuHandle. It satisfies menucache.Builder.
func (c *Client) New(ctx context.Context, peer, path string) (menumodel.MenuHandle, error) {
	obj := c.conn.Object(peer, dbus.ObjectPath(path))

	var revision uint32
	var root rawItem
	call := obj.CallWithContext(ctx, methodLayout, 0, int32(0), int32(-1), []string{})
	if call.Err != nil {
		return nil, fmt.Errorf("dbusmenu: GetLayout %s%s: %w", peer, path, call.Err)
	}
	if err := call.Store(&revision, &root); err != nil {
		return nil, fmt.Errorf("dbusmenu: decode GetLayout reply from %s%s: %w", peer, path, err)
	}

	return buildNode(c.conn, peer, path, root, true), nil
}

// Refresh re-fetches the layout in place, replacing n's children and
// properties. Callers hold no other reference to the old subtree once this
// returns; handles obtained from walker results before a Refresh become
// stale and should not be activated.
func (n *menuNode) Refresh(ctx context.Context) error {
	obj := n.conn.Object(n.peer, n.objectPath)

	var revision uint32
	var root rawItem
	call := obj.CallWithContext(ctx, methodLayout, 0, n.id, int32(-1), []string{})
	if call.Err != nil {
		return fmt.Errorf("dbusmenu: refresh GetLayout %s%s: %w", n.peer, n.path, call.Err)
	}
	if err := call.Store(&revision, &root); err != nil {
		return fmt.Errorf("dbusmenu: decode refresh reply from %s%s: %w", n.peer, n.path, err)
	}

	refreshed := buildNode(n.conn, n.peer, n.path, root, n.isRoot)
	n.props = refreshed.props
	n.children = refreshed.children
	return nil
}

func buildNode(conn *dbus.Conn, peer, path string, item rawItem, isRoot bool) *menuNode {
	n := &menuNode{
		conn:       conn,
		peer:       peer,
		path:       path,
		objectPath: dbus.ObjectPath(path),
		id:         item.ID,
		props:      item.Properties,
		isRoot:     isRoot,
	}
	for _, childVariant := range item.Children {
		childRaw, err := decodeRawItem(childVariant.Value())
		if err != nil {
			// A malformed child is dropped rather than failing the whole
			// tree; the walker simply never sees it.
			continue
		}
		n.children = append(n.children, buildNode(conn, peer, path, childRaw, false))
	}
	return n
}

// SubscribeLayoutUpdated adds a match rule for this peer's LayoutUpdated
// signal. The caller is responsible for conn.Signal(ch) plumbing; this only
// adds the match rule scoped to peer and path.
func SubscribeLayoutUpdated(conn *dbus.Conn, peer, path string) error {
	return conn.AddMatchSignal(
		dbus.WithMatchInterface(ifaceMenu),
		dbus.WithMatchMember("LayoutUpdated"),
		dbus.WithMatchObjectPath(dbus.ObjectPath(path)),
		dbus.WithMatchSender(peer),
	)
}

type menuNode struct {
	conn       *dbus.Conn
	peer       string
	path       string
	objectPath dbus.ObjectPath
	id         int32
	props      map[string]dbus.Variant
	children   []menumodel.MenuHandle
	isRoot     bool
}

func (n *menuNode) BusName() string   { return n.peer }
func (n *menuNode) ObjectPath() string { return n.path }
func (n *menuNode) IsRoot() bool      { return n.isRoot }
func (n *menuNode) ID() int32         { return n.id }

func (n *menuNode) Children() []menumodel.MenuHandle { return n.children }

func (n *menuNode) Label() (string, bool) {
	return n.stringProp(propLabel)
}

func (n *menuNode) ItemType() (string, bool) {
	return n.stringProp(propType)
}

// Enabled defaults to true: dbusmenu peers omit the "enabled" property
// entirely for the common case of an always-enabled item.
func (n *menuNode) Enabled() bool {
	return n.boolProp(propEnabled, true)
}

// Visible defaults to true for the same reason.
func (n *menuNode) Visible() bool {
	return n.boolProp(propVisible, true)
}

func (n *menuNode) stringProp(name string) (string, bool) {
	v, ok := n.props[name]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}

func (n *menuNode) boolProp(name string, def bool) bool {
	v, ok := n.props[name]
	if !ok {
		return def
	}
	b, ok := v.Value().(bool)
	if !ok {
		return def
	}
	return b
}

// Activate sends the dbusmenu "clicked" event for this item's id. A stale
// handle (its peer has since dropped off the bus) returns the underlying
// D-Bus call error; callers log and continue rather than treating this as
// fatal, per the activation component's contract.
func (n *menuNode) Activate(timestamp uint32) error {
	obj := n.conn.Object(n.peer, n.objectPath)
	call := obj.Call(methodEvent, 0, n.id, "clicked", dbus.MakeVariant(""), timestamp)
	if call.Err != nil {
		return fmt.Errorf("dbusmenu: Event(clicked) on %s%s#%d: %w", n.peer, n.path, n.id, call.Err)
	}
	return nil
}
