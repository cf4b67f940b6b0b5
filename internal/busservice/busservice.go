// Package busservice exports the project's own bus interface
// (GetSuggestions, ExecuteQuery), subscribes to LayoutUpdated on behalf of
// the menu cache, and emits the startup FindServers broadcast. It is the
// service registration facade around the search core.
package busservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/ayatana-go/menuhud/internal/activation"
	"github.com/ayatana-go/menuhud/internal/menucache"
	"github.com/ayatana-go/menuhud/internal/search"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

const (
	serviceInterface = "com.ayatana.MenuHud"
	servicePath      = "/com/ayatana/MenuHud"

	dbusmenuInterface = "com.canonical.dbusmenu"

	// SuggestionLimit bounds GetSuggestions's reply to its top-N results.
	SuggestionLimit = 10
)

const introspectXML = `
<node>
	<interface name="com.ayatana.MenuHud">
		<method name="GetSuggestions">
			<arg direction="in" type="s" name="query"/>
			<arg direction="out" type="s" name="headline"/>
			<arg direction="out" type="as" name="suggestions"/>
		</method>
		<method name="ExecuteQuery">
			<arg direction="in" type="s" name="query"/>
		</method>
	</interface>
	<interface name="org.freedesktop.DBus.Introspectable">
		<method name="Introspect">
			<arg direction="out" type="s" name="xml"/>
		</method>
	</interface>
</node>`

// Service owns the bus connection's registration for the project's own
// interface and forwards incoming LayoutUpdated signals into the cache.
type Service struct {
	conn   *dbus.Conn
	cache  menucache.Cache
	engine Engine
	logger *slog.Logger

	focusedPeer string
	focusedPath string

	signals chan *dbus.Signal
	done    chan struct{}
}

// Engine is the subset of *search.Engine this package depends on, so tests
// can substitute a fake.
type Engine interface {
	Search(ctx context.Context, query *string, peer, path string) []menumodel.Found
}

var _ Engine = (*search.Engine)(nil)

// New wires conn to cache and engine. focusedPeer/focusedPath identify the
// application whose tree GetSuggestions and ExecuteQuery search. They are
// supplied once at construction and do not follow window focus changes.
func New(conn *dbus.Conn, cache menucache.Cache, engine Engine, logger *slog.Logger, focusedPeer, focusedPath string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		conn:        conn,
		cache:       cache,
		engine:      engine,
		logger:      logger,
		focusedPeer: focusedPeer,
		focusedPath: focusedPath,
		done:        make(chan struct{}),
	}
}

// Start exports the service's own interface, subscribes to LayoutUpdated,
// and emits the startup FindServers broadcast. It returns once exporting
// and subscribing have succeeded; signal forwarding then runs in the
// background until ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if err := s.conn.Export(s, dbus.ObjectPath(servicePath), serviceInterface); err != nil {
		return fmt.Errorf("busservice: export %s: %w", serviceInterface, err)
	}
	if err := s.conn.Export(introspect.Introspectable(introspectXML), dbus.ObjectPath(servicePath),
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("busservice: export introspectable: %w", err)
	}

	if err := s.conn.AddMatchSignal(
		dbus.WithMatchInterface(dbusmenuInterface),
		dbus.WithMatchMember("LayoutUpdated"),
	); err != nil {
		return fmt.Errorf("busservice: subscribe LayoutUpdated: %w", err)
	}

	s.signals = make(chan *dbus.Signal, 32)
	s.conn.Signal(s.signals)
	go s.forwardSignals(ctx)

	if err := s.conn.Emit(dbus.ObjectPath("/"), dbusmenuInterface+".FindServers"); err != nil {
		// A transient bus error on FindServers is a warning, not fatal —
		// publishers may still appear later via their own LayoutUpdated
		// signals.
		s.logger.Warn("busservice: FindServers emission failed", "error", err)
	}

	return nil
}

func (s *Service) forwardSignals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case sig, ok := <-s.signals:
			if !ok {
				return
			}
			if sig.Name != dbusmenuInterface+".LayoutUpdated" {
				continue
			}
			peer := sig.Sender
			path := string(sig.Path)
			if err := s.cache.Observe(ctx, peer, path); err != nil {
				s.logger.Warn("busservice: cache observe failed", "peer", peer, "path", path, "error", err)
			}
		}
	}
}

// Stop releases the bus registration in this order: unregister the object,
// unsubscribe the signal, then stop forwarding.
// The caller drops the cache and indicator tracker afterward.
func (s *Service) Stop() {
	_ = s.conn.Export(nil, dbus.ObjectPath(servicePath), serviceInterface)
	s.conn.RemoveSignal(s.signals)
	_ = s.conn.RemoveMatchSignal(
		dbus.WithMatchInterface(dbusmenuInterface),
		dbus.WithMatchMember("LayoutUpdated"),
	)
	close(s.done)
}

// GetSuggestions implements the project's own bus method: a headline plus
// the top-N display strings of a fresh search against the focused
// application, sorted ascending by distance.
func (s *Service) GetSuggestions(query string) (string, []string, *dbus.Error) {
	var q *string
	if query != "" {
		q = &query
	}

	found := s.engine.Search(context.Background(), q, s.focusedPeer, s.focusedPath)
	suggestions := make([]string, 0, SuggestionLimit)
	for i, f := range found {
		if i >= SuggestionLimit {
			break
		}
		suggestions = append(suggestions, f.DisplayString)
	}

	headline := fmt.Sprintf("%d suggestions for %q", len(found), query)
	return headline, suggestions, nil
}

// ExecuteQuery activates the top-ranked result of a fresh search for query.
// An empty result list is not an error: there is simply nothing to
// activate.
func (s *Service) ExecuteQuery(query string) *dbus.Error {
	var q *string
	if query != "" {
		q = &query
	}

	found := s.engine.Search(context.Background(), q, s.focusedPeer, s.focusedPath)
	if len(found) == 0 {
		return nil
	}
	activation.Activate(s.logger, found[0])
	return nil
}
