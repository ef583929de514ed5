// Package archive partitions selected files into zip bundles, writes them
// with an embedded restore manifest, and restores previously written
// bundles.
package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Strategy selects how a file set is partitioned into bundles.
type Strategy int

const (
	// Single puts all files into one bundle, in input order.
	Single Strategy = iota
	// MaxSizePerBundle greedily fills bundles up to a byte limit.
	MaxSizePerBundle
	// MaxCountPerBundle cuts the input into consecutive chunks of a
	// fixed member count.
	MaxCountPerBundle
	// GroupByExtension makes one bundle per distinct lowercase extension.
	GroupByExtension
)

var strategyNames = map[Strategy]string{
	Single:            "single",
	MaxSizePerBundle:  "size",
	MaxCountPerBundle: "count",
	GroupByExtension:  "ext",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy parses a strategy name as used on the command line.
func ParseStrategy(s string) (Strategy, error) {
	for strat, name := range strategyNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return strat, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q (want single, size, count, or ext)", s)
}

// File is one archive candidate, in selection order.
type File struct {
	Path string
	Size int64
}

// Member is a file assigned to a bundle. Ordinal is the file's position in
// the overall input sequence and feeds entry-name collision resolution.
type Member struct {
	Path    string
	Size    int64
	Ordinal int
}

// Bundle describes one container to be written.
type Bundle struct {
	Name    string // container file name
	Target  string // full container path
	Members []Member
}

// TotalSize returns the sum of member sizes.
func (b Bundle) TotalSize() int64 {
	var total int64
	for _, m := range b.Members {
		total += m.Size
	}
	return total
}

// EntryNames resolves the archive entry name for every member, in order.
// The candidate name is the member's base name; on collision within the
// bundle the name becomes "<ordinal>_<basename>", which is unique because
// ordinals are unique across the input.
func (b Bundle) EntryNames() []string {
	used := make(map[string]bool, len(b.Members))
	names := make([]string, len(b.Members))
	for i, m := range b.Members {
		name := filepath.Base(m.Path)
		if used[name] {
			name = fmt.Sprintf("%d_%s", m.Ordinal, name)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// Plan is an ordered sequence of bundles, computed entirely in memory
// before any I/O.
type Plan struct {
	Bundles []Bundle
}

// TotalFiles returns the number of members across all bundles.
func (p *Plan) TotalFiles() int {
	var n int
	for _, b := range p.Bundles {
		n += len(b.Members)
	}
	return n
}

// PlanRequest describes the input to NewPlan.
type PlanRequest struct {
	Files      []File
	Strategy   Strategy
	SizeLimit  int64 // required for MaxSizePerBundle
	CountLimit int   // required for MaxCountPerBundle
	TargetDir  string
	BaseName   string // container name stem, e.g. "archive_20260826_143000"
}

// NewPlan partitions the request's files into bundles. Pure function, no
// I/O; an empty input yields an empty plan.
func NewPlan(req PlanRequest) (*Plan, error) {
	if len(req.Files) == 0 {
		return &Plan{}, nil
	}

	members := make([]Member, len(req.Files))
	for i, f := range req.Files {
		members[i] = Member{Path: f.Path, Size: f.Size, Ordinal: i}
	}

	var groups [][]Member
	var suffixes []string

	switch req.Strategy {
	case Single:
		groups = [][]Member{members}
		suffixes = []string{""}

	case MaxSizePerBundle:
		if req.SizeLimit <= 0 {
			return nil, fmt.Errorf("size strategy requires a positive byte limit")
		}
		groups = splitBySize(members, req.SizeLimit)
		suffixes = sequenceSuffixes(len(groups))

	case MaxCountPerBundle:
		if req.CountLimit <= 0 {
			return nil, fmt.Errorf("count strategy requires a positive member limit")
		}
		groups = splitByCount(members, req.CountLimit)
		suffixes = sequenceSuffixes(len(groups))

	case GroupByExtension:
		groups, suffixes = splitByExtension(members)

	default:
		return nil, fmt.Errorf("unknown strategy %d", req.Strategy)
	}

	plan := &Plan{Bundles: make([]Bundle, len(groups))}
	for i, group := range groups {
		name := req.BaseName + suffixes[i] + ".zip"
		plan.Bundles[i] = Bundle{
			Name:    name,
			Target:  filepath.Join(req.TargetDir, name),
			Members: group,
		}
	}
	return plan, nil
}

// splitBySize greedily accumulates members in input order, closing the
// current group when the next member would push its total past the limit.
// A single member larger than the limit still goes alone into its own
// group; every group has at least one member.
func splitBySize(members []Member, limit int64) [][]Member {
	var groups [][]Member
	var cur []Member
	var curSize int64

	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, cur)
			cur = nil
			curSize = 0
		}
	}

	for _, m := range members {
		if len(cur) > 0 && curSize+m.Size > limit {
			flush()
		}
		cur = append(cur, m)
		curSize += m.Size
		if curSize > limit {
			// Oversize member: close immediately so it stays alone.
			flush()
		}
	}
	flush()
	return groups
}

// splitByCount cuts members into consecutive chunks of exactly limit
// members; the final chunk may be smaller.
func splitByCount(members []Member, limit int) [][]Member {
	var groups [][]Member
	for start := 0; start < len(members); start += limit {
		end := start + limit
		if end > len(members) {
			end = len(members)
		}
		groups = append(groups, members[start:end])
	}
	return groups
}

// splitByExtension groups members by lowercase extension (leading dot
// stripped), in first-appearance order. Files without an extension form
// their own "noext" group.
func splitByExtension(members []Member) ([][]Member, []string) {
	byExt := make(map[string][]Member)
	var order []string

	for _, m := range members {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(m.Path)), ".")
		if ext == "" {
			ext = "noext"
		}
		if _, seen := byExt[ext]; !seen {
			order = append(order, ext)
		}
		byExt[ext] = append(byExt[ext], m)
	}

	groups := make([][]Member, len(order))
	suffixes := make([]string, len(order))
	for i, ext := range order {
		groups[i] = byExt[ext]
		suffixes[i] = "_" + ext
	}
	return groups, suffixes
}

func sequenceSuffixes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("_%03d", i+1)
	}
	return out
}
