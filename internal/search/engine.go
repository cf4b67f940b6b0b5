// Package search implements the search orchestrator: given a query and a
// focused application (peer, path), it walks that application's menu tree
// plus every known indicator's tree, re-weights indicator results, merges,
// and returns a single list sorted ascending by distance.
package search

import (
	"context"
	"sort"

	"github.com/ayatana-go/menuhud/internal/menucache"
	"github.com/ayatana-go/menuhud/internal/settings"
	"github.com/ayatana-go/menuhud/internal/utils"
	"github.com/ayatana-go/menuhud/internal/walker"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

// IndicatorSource supplies the flat list of currently known indicators.
// It reports the flat list of indicator bus addresses, object paths,
// display names, and path-prefixes currently known; internal/indicator
// provides the concrete implementation.
type IndicatorSource interface {
	Indicators() []menumodel.IndicatorDescriptor
}

// Engine is the search orchestrator. It holds no per-request state; all
// inputs to Search are passed explicitly.
type Engine struct {
	cache      menucache.Cache
	indicators IndicatorSource
	cfg        *settings.Settings
}

// New builds an Engine over cache and indicators, using cfg for scoring and
// indicator re-weighting. A nil cfg falls back to settings.Current().
func New(cache menucache.Cache, indicators IndicatorSource, cfg *settings.Settings) *Engine {
	if cfg == nil {
		cfg = settings.Current()
	}
	return &Engine{cache: cache, indicators: indicators, cfg: cfg}
}

// Search walks the focused application's tree plus every known indicator's
// tree for query. A nil or
// empty query is valid: the walker's empty-query shortcut applies to the
// focused application, and indicators are skipped entirely (they are only
// walked for a non-empty query).
func (e *Engine) Search(ctx context.Context, query *string, peer, path string) []menumodel.Found {
	var results []menumodel.Found

	visited := []string{peer + path}
	if handle, ok := e.cache.Lookup(menumodel.MenuKey{Peer: peer, Path: path}); ok {
		results = append(results, walker.Walk(e.cfg, handle, query, "", "")...)
	}

	if query != nil && *query != "" && e.indicators != nil {
		for _, d := range e.indicators.Indicators() {
			key := d.BusName + d.ObjectPath
			if utils.Contains(visited, key) {
				// Already walked as the focused application; an indicator
				// publishing the same (peer, path) would otherwise be
				// scored and re-weighted a second time.
				continue
			}
			visited = append(visited, key)

			handle, ok := e.cache.Lookup(menumodel.MenuKey{Peer: d.BusName, Path: d.ObjectPath})
			if !ok {
				continue
			}
			indicatorResults := walker.Walk(e.cfg, handle, query, d.LabelPrefix, d.DisplayName)
			for i := range indicatorResults {
				indicatorResults[i].Distance = e.cfg.IndicatorScale(indicatorResults[i].Distance)
			}
			results = append(results, indicatorResults...)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results
}
