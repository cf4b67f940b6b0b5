// Package indicator supplies the search orchestrator's IndicatorSource: a
// static, operator-declared list of indicator descriptors, optionally kept
// fresh by polling org.kde.StatusNotifierWatcher for the bus's currently
// registered status notifier items. Neither path implements the real
// indicator tracker (out of scope); both only produce the
// menumodel.IndicatorDescriptor shape the search orchestrator consumes.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

const (
	watcherService  = "org.kde.StatusNotifierWatcher"
	watcherPath     = "/StatusNotifierWatcher"
	registeredProp  = "RegisteredStatusNotifierItems"
)

// Tracker holds the current indicator list and serves it to the search
// orchestrator. It starts from a config-declared list and, if Poll is
// called and a StatusNotifierWatcher is present, refreshes itself from the
// live registry.
type Tracker struct {
	mu      sync.RWMutex
	entries []menumodel.IndicatorDescriptor
	conn    *dbus.Conn
	logger  *slog.Logger
}

// NewTracker seeds the tracker with a config-declared list. conn may be nil
// if the caller never intends to call Poll.
func NewTracker(conn *dbus.Conn, logger *slog.Logger, declared []menumodel.IndicatorDescriptor) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{entries: declared, conn: conn, logger: logger}
}

// Indicators satisfies search.IndicatorSource.
func (t *Tracker) Indicators() []menumodel.IndicatorDescriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]menumodel.IndicatorDescriptor, len(t.entries))
	copy(out, t.entries)
	return out
}

// Poll queries RegisteredStatusNotifierItems and merges any newly seen
// items into the tracker's list, keyed by bus name. It is a best-effort
// refresh: if the watcher service is absent from the bus, Poll logs at
// debug level and leaves the declared list untouched.
func (t *Tracker) Poll(ctx context.Context) error {
	if t.conn == nil {
		return nil
	}

	obj := t.conn.Object(watcherService, dbus.ObjectPath(watcherPath))
	var items []string
	err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		watcherService, registeredProp).Store(&items)
	if err != nil {
		t.logger.Debug("indicator: StatusNotifierWatcher unavailable, keeping declared list", "error", err)
		return nil
	}

	discovered := make([]menumodel.IndicatorDescriptor, 0, len(items))
	for _, item := range items {
		busName, objectPath := splitServiceItem(item)
		if busName == "" {
			continue
		}
		discovered = append(discovered, menumodel.IndicatorDescriptor{
			BusName:     busName,
			ObjectPath:  objectPath,
			DisplayName: busName,
		})
	}

	t.mu.Lock()
	t.entries = mergeByBusName(t.entries, discovered)
	t.mu.Unlock()
	return nil
}

// splitServiceItem parses a RegisteredStatusNotifierItems entry, which is
// either "busname/objectpath" or a bare unique bus name (defaulting to the
// StatusNotifierItem standard object path).
func splitServiceItem(item string) (busName, objectPath string) {
	if idx := strings.Index(item, "/"); idx >= 0 {
		return item[:idx], item[idx:]
	}
	if item == "" {
		return "", ""
	}
	return item, "/StatusNotifierItem"
}

func mergeByBusName(declared, discovered []menumodel.IndicatorDescriptor) []menumodel.IndicatorDescriptor {
	seen := make(map[string]bool, len(declared))
	merged := make([]menumodel.IndicatorDescriptor, len(declared))
	copy(merged, declared)
	for _, d := range merged {
		seen[d.BusName] = true
	}
	for _, d := range discovered {
		if !seen[d.BusName] {
			merged = append(merged, d)
			seen[d.BusName] = true
		}
	}
	return merged
}
