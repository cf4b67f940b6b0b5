// Package activation dispatches an "activated" event to a previously
// returned Found's menu item.
package activation

import (
	"log/slog"

	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

// Activate sends a clicked event (timestamp 0) to found's originating menu
// item. A stale handle — one whose peer has dropped off
// the bus since the Found was returned — fails silently from the caller's
// perspective: the error is logged and never retried.
func Activate(logger *slog.Logger, found menumodel.Found) {
	if found.Handle == nil {
		logger.Warn("activation: found has no handle", "peer", found.PeerAddress, "path", found.ObjectPath)
		return
	}
	if err := found.Handle.Activate(0); err != nil {
		logger.Warn("activation: failed, handle likely stale",
			"peer", found.PeerAddress, "path", found.ObjectPath, "item", found.ItemID, "error", err)
	}
}
