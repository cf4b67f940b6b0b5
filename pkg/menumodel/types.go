// Package menumodel defines the data types shared across the search engine:
// the addressing of a live menu tree, the narrow contract an external
// menu-client implementation must satisfy, and the candidate records the
// search core hands back to callers.
package menumodel

import "fmt"

// MenuKey identifies a menu-publisher on the bus by the pair of its peer
// address and object path. Both fields are required; equality is over both,
// never either alone.
type MenuKey struct {
	Peer string
	Path string
}

// String renders the key for logging.
func (k MenuKey) String() string {
	return fmt.Sprintf("%s%s", k.Peer, k.Path)
}

// MenuHandle is the narrow interface the search core needs from an
// externally-managed menu tree. A concrete implementation (internal/dbusmenu)
// mirrors a live com.canonical.dbusmenu publisher; tests use fakes that
// satisfy the same interface.
type MenuHandle interface {
	// BusName and ObjectPath report the address this handle was built for.
	BusName() string
	ObjectPath() string

	// IsRoot reports whether this item is the tree's synthetic root (never
	// itself a candidate).
	IsRoot() bool

	// Enabled and Visible mirror the dbusmenu "enabled"/"visible"
	// properties. A false value on an item or any ancestor hides the whole
	// subtree from search.
	Enabled() bool
	Visible() bool

	// Label returns the item's "label" property and whether it is present.
	Label() (string, bool)

	// ItemType returns the item's "type" property and whether it is
	// present; separators and other non-activatable specials carry one.
	ItemType() (string, bool)

	// ID is the dbusmenu item id, used to re-locate the item for
	// activation.
	ID() int32

	// Children returns the item's direct children in display order.
	Children() []MenuHandle

	// Activate dispatches the dbusmenu "clicked" event with the given
	// timestamp.
	Activate(timestamp uint32) error
}

// IndicatorDescriptor is supplied by the external indicator tracker: one
// system-tray-style menu publisher to search alongside the focused
// application.
type IndicatorDescriptor struct {
	BusName     string
	ObjectPath  string
	DisplayName string
	LabelPrefix string
}

// Found is an immutable candidate record: enough to display, rank, and
// later activate a single menu item.
type Found struct {
	PeerAddress string
	ObjectPath  string
	ItemID      int32

	DisplayString string
	Distance      uint64

	// IndicatorName is empty iff this candidate came from the focused
	// application's own tree rather than an indicator.
	IndicatorName string

	// Handle keeps the specific menu item alive for activation; it is nil
	// only for candidates a test constructs without a backing tree.
	Handle MenuHandle
}

// FromIndicator reports whether this candidate originated from an
// indicator's tree rather than the searched application.
func (f Found) FromIndicator() bool {
	return f.IndicatorName != ""
}
