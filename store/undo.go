package store

import "sync"

// undoRedoLog holds the three stacks spec §4.2 describes: undo, redo, and
// an append-only history. A single mutex guards all three; its critical
// section is meant to be held only long enough to push/pop after a
// backend transaction has already committed (spec §5).
type undoRedoLog struct {
	mu      sync.Mutex
	undo    []Action
	redo    []Action
	history []Action
}

func newUndoRedoLog() *undoRedoLog {
	return &undoRedoLog{}
}

// record implements the transition table in spec §4.2. original is the
// action that was just dispatched, inverse is what dispatch computed for
// it (nil for queries or failed mutations), and kind says whether this
// was a user-issued call or a re-application during Undo/Redo.
func (l *undoRedoLog) record(original Action, inverse Action, kind OperationKind, dispatchErr error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, original)

	if dispatchErr != nil || inverse == nil {
		return
	}

	switch kind {
	case OpOther:
		l.undo = append(l.undo, inverse)
		l.redo = nil
	case OpRedo:
		l.undo = append(l.undo, inverse)
	case OpUndo:
		l.redo = append(l.redo, inverse)
	}
}

func (l *undoRedoLog) popUndo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.undo)
	if n == 0 {
		return nil, false
	}
	a := l.undo[n-1]
	l.undo = l.undo[:n-1]
	return a, true
}

func (l *undoRedoLog) popRedo() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.redo)
	if n == 0 {
		return nil, false
	}
	a := l.redo[n-1]
	l.redo = l.redo[:n-1]
	return a, true
}

func (l *undoRedoLog) pushUndo(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = append(l.undo, a)
}

func (l *undoRedoLog) pushRedo(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redo = append(l.redo, a)
}

// History returns a snapshot of every action executed so far, oldest
// first.
func (l *undoRedoLog) History() []Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Action, len(l.history))
	copy(out, l.history)
	return out
}

// History returns a snapshot of the store's append-only action log.
func (s *Store) History() []Action { return s.undo.History() }

// UndoDepth and RedoDepth report the current stack sizes, useful for
// tests asserting scenario S3's branch-clearing behavior.
func (s *Store) UndoDepth() int {
	s.undo.mu.Lock()
	defer s.undo.mu.Unlock()
	return len(s.undo.undo)
}

func (s *Store) RedoDepth() int {
	s.undo.mu.Lock()
	defer s.undo.mu.Unlock()
	return len(s.undo.redo)
}
