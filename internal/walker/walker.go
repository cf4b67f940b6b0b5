// Package walker implements a pre-order menu-tree traversal: it turns a
// live menumodel.MenuHandle tree into a flat sequence of scored Found
// candidates, building "A > B > C" ancestry strings as it descends.
package walker

import (
	"strings"

	"github.com/ayatana-go/menuhud/internal/distance"
	"github.com/ayatana-go/menuhud/internal/settings"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

// Walk visits root pre-order and returns one Found per labeled,
// enabled/visible non-root item, scored against query. prefix seeds the
// ancestry path (an indicator's configured label prefix, or "" for the
// focused application). indicatorName is non-empty iff this walk is
// scoring an indicator's tree rather than the focused application's; it is
// copied onto every emitted Found.
//
// A nil or empty query takes an empty-query shortcut: only root's direct
// labeled children are emitted, unscored by path but scored via the
// null-haystack edge case, and no recursion happens below them.
func Walk(cfg *settings.Settings, root menumodel.MenuHandle, query *string, prefix, indicatorName string) []menumodel.Found {
	if query == nil || *query == "" {
		return walkEmptyQuery(cfg, root, indicatorName)
	}

	var out []menumodel.Found
	walk(cfg, root, query, prefix, indicatorName, true, &out)
	return out
}

func walk(cfg *settings.Settings, node menumodel.MenuHandle, query *string, prefix, indicatorName string, isRoot bool, out *[]menumodel.Found) {
	if !node.Enabled() || !node.Visible() {
		return
	}

	label, path := extendPath(node, prefix)

	if !isRoot && label != "" {
		d, _, err := distance.ScorePath(cfg, query, splitPath(path))
		if err == nil {
			*out = append(*out, menumodel.Found{
				PeerAddress:   node.BusName(),
				ObjectPath:    node.ObjectPath(),
				ItemID:        node.ID(),
				DisplayString: path,
				Distance:      d,
				IndicatorName: indicatorName,
				Handle:        node,
			})
		}
	}

	for _, child := range node.Children() {
		walk(cfg, child, query, path, indicatorName, false, out)
	}
}

func walkEmptyQuery(cfg *settings.Settings, root menumodel.MenuHandle, indicatorName string) []menumodel.Found {
	var out []menumodel.Found
	for _, child := range root.Children() {
		if !child.Enabled() || !child.Visible() {
			continue
		}
		label, hasLabel := localLabel(child)
		if !hasLabel {
			continue
		}
		d, _, err := distance.Score(cfg, &label, nil)
		if err != nil {
			continue
		}
		out = append(out, menumodel.Found{
			PeerAddress:   child.BusName(),
			ObjectPath:    child.ObjectPath(),
			ItemID:        child.ID(),
			DisplayString: label,
			Distance:      d,
			IndicatorName: indicatorName,
			Handle:        child,
		})
	}
	return out
}

// localLabel returns the item's label with accelerator underscores
// stripped, and false if the item carries no label or is typed (a
// separator or other special).
func localLabel(node menumodel.MenuHandle) (string, bool) {
	if _, isTyped := node.ItemType(); isTyped {
		return "", false
	}
	label, ok := node.Label()
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(label, "_", ""), true
}

// extendPath computes this node's local label and the path string that
// results from appending it to prefix.
func extendPath(node menumodel.MenuHandle, prefix string) (label, path string) {
	label, hasLabel := localLabel(node)
	if !hasLabel {
		return "", prefix
	}
	if prefix == "" {
		return label, label
	}
	return label, prefix + " > " + label
}

func splitPath(path string) []string {
	return strings.Split(path, " > ")
}
