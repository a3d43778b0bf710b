// Package pathfind discovers shortest relationship paths between graph
// entities. Traversal is breadth-first over both edge directions, so the
// first depth at which the target appears is the shortest; the finder
// collects every distinct path of that length up to a configured cap.
package pathfind

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
)

// Step is one traversed edge within a path, annotated with the direction it
// was walked relative to the path's progress.
type Step struct {
	Edge      graph.Edge      `json:"edge"`
	Direction graph.Direction `json:"direction"`
}

// Path is an ordered sequence of steps from source to target. A path from
// an entity to itself has zero steps.
type Path struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Steps    []Step `json:"steps"`
}

// Length returns the number of edges in the path.
func (p Path) Length() int {
	return len(p.Steps)
}

// Config holds traversal limits.
type Config struct {
	// MaxDepth caps the max_depth a caller may request
	MaxDepth int

	// MaxPaths caps how many shortest paths one search returns
	MaxPaths int
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = 10
	}
	if c.MaxPaths == 0 {
		c.MaxPaths = 8
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "pathfind", "Validate",
			fmt.Sprintf("max depth must be positive, got %d", c.MaxDepth))
	}
	if c.MaxPaths <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "pathfind", "Validate",
			fmt.Sprintf("max paths must be positive, got %d", c.MaxPaths))
	}
	return nil
}

// Deps holds the dependencies for the finder
type Deps struct {
	Store  graph.Reader
	Logger *slog.Logger
}

// Finder performs bounded all-shortest-paths searches.
type Finder struct {
	config Config
	store  graph.Reader
	logger *slog.Logger
}

// NewFinder creates a path finder with validated configuration.
func NewFinder(config Config, deps Deps) (*Finder, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "pathfind", "NewFinder",
			"store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Finder{
		config: config,
		store:  deps.Store,
		logger: deps.Logger.With("component", "pathfind"),
	}, nil
}

// walkState is one frontier entry: the entity reached and the steps taken
// to get there. Each state carries its own visited set so that parallel
// branches through a shared node remain independent paths.
type walkState struct {
	entityID string
	steps    []Step
	visited  map[string]bool
}

// FindPaths returns every shortest path from source to target within
// maxDepth hops, up to the configured path cap. Edges are traversed in both
// directions and each step records the true direction walked. A source that
// equals the target yields a single zero-edge path. No path within the
// bound yields an empty slice, not an error. When the context expires
// mid-search the whole search is abandoned with ErrQueryTimeout rather than
// returning a partial path set.
func (f *Finder) FindPaths(ctx context.Context, sourceID, targetID string, maxDepth int) ([]Path, error) {
	if maxDepth <= 0 || maxDepth > f.config.MaxDepth {
		maxDepth = f.config.MaxDepth
	}

	// Hold one snapshot for the whole traversal
	snap, err := f.store.Current()
	if err != nil {
		return nil, err
	}

	if snap.EntityByID(sourceID) == nil {
		return nil, errors.Wrap(graph.ErrEntityNotFound, "pathfind", "FindPaths",
			fmt.Sprintf("source %q", sourceID))
	}
	if snap.EntityByID(targetID) == nil {
		return nil, errors.Wrap(graph.ErrEntityNotFound, "pathfind", "FindPaths",
			fmt.Sprintf("target %q", targetID))
	}

	if sourceID == targetID {
		return []Path{{SourceID: sourceID, TargetID: targetID, Steps: []Step{}}}, nil
	}

	paths, err := f.breadthFirst(ctx, snap, sourceID, targetID, maxDepth)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("path search complete",
		"source", sourceID,
		"target", targetID,
		"max_depth", maxDepth,
		"paths", len(paths))

	return paths, nil
}

func (f *Finder) breadthFirst(ctx context.Context, snap *graph.Snapshot, sourceID, targetID string, maxDepth int) ([]Path, error) {
	frontier := []walkState{{
		entityID: sourceID,
		visited:  map[string]bool{sourceID: true},
	}}

	var found []Path

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []walkState
		for _, state := range frontier {
			// A single frontier level can grow combinatorially on dense
			// graphs, so the budget is checked per expansion, not per level
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapTransient(graph.ErrQueryTimeout, "pathfind", "FindPaths",
					fmt.Sprintf("abandoned at depth %d", depth))
			}

			for _, step := range neighborSteps(snap, state.entityID) {
				otherID := step.OtherID()
				if state.visited[otherID] {
					continue
				}

				steps := appendStep(state.steps, step)

				if otherID == targetID {
					found = append(found, Path{
						SourceID: sourceID,
						TargetID: targetID,
						Steps:    steps,
					})
					if len(found) >= f.config.MaxPaths {
						return found, nil
					}
					continue
				}

				visited := make(map[string]bool, len(state.visited)+1)
				for id := range state.visited {
					visited[id] = true
				}
				visited[otherID] = true

				next = append(next, walkState{
					entityID: otherID,
					steps:    steps,
					visited:  visited,
				})
			}
		}

		// Shorter paths always win: once any path reaches the target,
		// deeper levels cannot produce a shortest path
		if len(found) > 0 {
			return found, nil
		}
		frontier = next
	}

	return found, nil
}

// neighborSteps enumerates every edge touching the entity as a direction-
// annotated step. Adjacency lists are pre-sorted, and outgoing precedes
// incoming, so enumeration order is deterministic.
func neighborSteps(snap *graph.Snapshot, entityID string) []Step {
	outgoing := snap.Outgoing(entityID, "")
	incoming := snap.Incoming(entityID, "")

	steps := make([]Step, 0, len(outgoing)+len(incoming))
	for _, edge := range outgoing {
		steps = append(steps, Step{Edge: edge, Direction: graph.DirectionOutgoing})
	}
	for _, edge := range incoming {
		steps = append(steps, Step{Edge: edge, Direction: graph.DirectionIncoming})
	}
	return steps
}

// OtherID returns the entity the step arrives at.
func (s Step) OtherID() string {
	if s.Direction == graph.DirectionOutgoing {
		return s.Edge.ToID
	}
	return s.Edge.FromID
}

// appendStep copies the path prefix before extending it, since sibling
// branches share the prefix slice.
func appendStep(steps []Step, step Step) []Step {
	extended := make([]Step, len(steps), len(steps)+1)
	copy(extended, steps)
	return append(extended, step)
}
