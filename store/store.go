// Package store implements the transactional property-graph contract of
// spec.md §4.1/§4.2/§6: graphs of nodes and edges with string-to-JSON
// property maps, a monotonic per-graph state_id, and an undo/redo/history
// log built from the inverse action every mutation produces.
package store

import (
	"context"
)

// Store is the single entry point for graph mutation and query, backed
// by a pluggable Backend. It owns the undo/redo/history stacks; the
// Backend owns durable storage.
type Store struct {
	backend Backend
	undo    *undoRedoLog
}

// New wraps backend in a Store with empty undo/redo/history stacks.
func New(backend Backend) *Store {
	return &Store{backend: backend, undo: newUndoRedoLog()}
}

// Execute is the store's single entry point (spec §6: "execute(Action) →
// Reply"). The operation kind (Other/Undo/Redo) is never supplied by the
// caller — it is implied by whether action is an UndoAction, a
// RedoAction, or anything else (spec §4.2).
func (s *Store) Execute(ctx context.Context, action Action) (Reply, error) {
	switch action.(type) {
	case UndoAction:
		return s.executeUndo(ctx)
	case RedoAction:
		return s.executeRedo(ctx)
	default:
		reply, inverse, err := s.dispatch(ctx, action)
		s.undo.record(action, inverse, OpOther, err)
		return reply, err
	}
}

func (s *Store) executeUndo(ctx context.Context) (Reply, error) {
	action, ok := s.undo.popUndo()
	if !ok {
		return nil, ErrUndoBufferEmpty
	}
	reply, inverse, err := s.dispatch(ctx, action)
	if err != nil {
		// The popped mutation could not be reapplied (e.g. a transport
		// error from a remote backend); restore it so a later retry can
		// still find it.
		s.undo.pushUndo(action)
		return reply, err
	}
	s.undo.record(action, inverse, OpUndo, nil)
	return reply, nil
}

func (s *Store) executeRedo(ctx context.Context) (Reply, error) {
	action, ok := s.undo.popRedo()
	if !ok {
		return nil, ErrRedoBufferEmpty
	}
	reply, inverse, err := s.dispatch(ctx, action)
	if err != nil {
		s.undo.pushRedo(action)
		return reply, err
	}
	s.undo.record(action, inverse, OpRedo, nil)
	return reply, nil
}

// dispatch executes action against the backend and returns its reply
// together with the inverse action to record (nil for queries and for
// actions with no inverse, e.g. a failed mutation).
func (s *Store) dispatch(ctx context.Context, action Action) (Reply, Action, error) {
	switch a := action.(type) {
	case CreateGraphAction:
		return s.createGraph(ctx, GraphID{}, a.Props, false)
	case CreateGraphWithIDAction:
		return s.createGraph(ctx, a.ID, a.Props, true)
	case DeleteGraphAction:
		return s.deleteGraph(ctx, a.GraphID)
	case MutateAction:
		return s.mutate(ctx, a.GraphID, a.Kind)
	case QueryAction:
		reply, err := s.query(ctx, a.Kind)
		return reply, nil, err
	default:
		return nil, nil, WrapErr(ErrInvalidID, errUnknownAction{action})
	}
}

type errUnknownAction struct{ action Action }

func (e errUnknownAction) Error() string { return "store: unknown action type" }
