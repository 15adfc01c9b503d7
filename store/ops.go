package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// createGraph implements create_graph / create_graph_with_id (spec
// §4.1). The graph's root vertex shares the graph's id; its state_id
// starts at 0 and is_graph_root is true.
func (s *Store) createGraph(ctx context.Context, id GraphID, props Properties, withID bool) (Reply, Action, error) {
	if !withID {
		raw, err := newID()
		if err != nil {
			return nil, nil, WrapErr(ErrDatastoreCreate, err)
		}
		id = GraphID(raw)
	}

	rootProps := props.Clone()
	if rootProps == nil {
		rootProps = Properties{}
	}
	rootProps[KeyIsGraphRoot] = PropBool(true)
	rootProps[KeyStateID] = PropUint64(0)

	tx, err := s.backend.Begin(ctx)
	if err != nil {
		return nil, nil, WrapErr(ErrCreateTransaction, err)
	}
	if err := tx.CreateVertex(ctx, id, NodeID(id), rootProps); err != nil {
		_ = tx.Rollback(ctx)
		return nil, nil, WrapErr(ErrCreateNode, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, WrapErr(ErrCreateTransaction, err)
	}

	return ReplyID{ID: uuid.UUID(id)}, DeleteGraphAction{GraphID: id}, nil
}

// deleteGraph implements delete_graph under the cascade policy chosen in
// DESIGN.md (open question 1): every direct child and its incident
// edges are removed along with the root. The inverse only restores the
// root vertex and its properties — full content restoration is out of
// scope for this irreversible operation, documented in DESIGN.md.
func (s *Store) deleteGraph(ctx context.Context, graph GraphID) (Reply, Action, error) {
	rootProps, err := s.backend.GetVertexProperties(ctx, graph, NodeID(graph))
	if err != nil {
		return nil, nil, mapNotFound(err, ErrGraphNotFound)
	}

	tx, err := s.backend.Begin(ctx)
	if err != nil {
		return nil, nil, WrapErr(ErrCreateTransaction, err)
	}
	if err := tx.DeleteGraph(ctx, graph); err != nil {
		_ = tx.Rollback(ctx)
		return nil, nil, WrapErr(ErrDeleteNode, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, WrapErr(ErrCreateTransaction, err)
	}

	return ReplyEmpty{}, CreateGraphWithIDAction{ID: graph, Props: rootProps}, nil
}

// mutate dispatches a graph-scoped MutateKind (spec §6's
// Mutate(graph_id, MutateKind)).
func (s *Store) mutate(ctx context.Context, graph GraphID, kind MutateKind) (Reply, Action, error) {
	switch k := kind.(type) {
	case CreateNode:
		return s.createNode(ctx, graph, NodeID{}, k.Props, false)
	case CreateNodeWithID:
		return s.createNode(ctx, graph, k.ID, k.Props, true)
	case RecreateNode:
		return s.recreateNode(ctx, graph, k)
	case UpdateNode:
		return s.updateNode(ctx, graph, k)
	case DeleteNode:
		return s.deleteNode(ctx, graph, k.NodeID)
	case CreateEdge:
		return s.createEdge(ctx, graph, k)
	case UpdateEdge:
		return s.updateEdge(ctx, graph, k)
	case DeleteEdge:
		return s.deleteEdge(ctx, graph, k.Edge)
	default:
		return nil, nil, WrapErr(ErrInvalidID, errors.New("store: unknown mutate kind"))
	}
}

// runMutation snapshots the graph root's properties, runs fn against a
// fresh transaction, bumps state_id inside the same transaction
// (spec §4.1 "update_state_id … invoked automatically after every
// successful mutating execute"), and commits. Root properties are read
// once, before the transaction begins — this reference implementation
// assumes a single writer per graph rather than taking a read inside the
// transaction, which keeps the Backend/Tx split simple at the cost of a
// race under concurrent mutators of the same graph (acceptable for the
// reference backends; a production backend wanting snapshot isolation
// across concurrent writers would move this read onto Tx).
func (s *Store) runMutation(ctx context.Context, graph GraphID, fn func(tx Tx) error) error {
	rootProps, err := s.backend.GetVertexProperties(ctx, graph, NodeID(graph))
	if err != nil {
		return mapNotFound(err, ErrGraphNotFound)
	}

	tx, err := s.backend.Begin(ctx)
	if err != nil {
		return WrapErr(ErrCreateTransaction, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	bumped := rootProps.Clone()
	current, _ := AsUint64(bumped[KeyStateID])
	bumped[KeyStateID] = PropUint64(current + 1)
	if err := tx.SetVertexProperties(ctx, graph, NodeID(graph), bumped); err != nil {
		_ = tx.Rollback(ctx)
		return WrapErr(ErrSetNodeProperties, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return WrapErr(ErrCreateTransaction, err)
	}
	return nil
}

func (s *Store) createNode(ctx context.Context, graph GraphID, id NodeID, props Properties, withID bool) (Reply, Action, error) {
	if !withID {
		raw, err := newID()
		if err != nil {
			return nil, nil, WrapErr(ErrCreateNode, err)
		}
		id = NodeID(raw)
	}

	err := s.runMutation(ctx, graph, func(tx Tx) error {
		if err := tx.CreateVertex(ctx, graph, id, props); err != nil {
			return WrapErr(ErrCreateNode, err)
		}
		edgeRaw, err := newID()
		if err != nil {
			return WrapErr(ErrCreateEdge, err)
		}
		ownEdge := Edge{From: NodeID(graph), To: id, Type: EdgeType(edgeRaw)}
		ok, err := tx.CreateEdge(ctx, graph, ownEdge, Properties{})
		if err != nil {
			return WrapErr(ErrCreateEdge, err)
		}
		if !ok {
			return ErrCreateEdgeFailed
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: DeleteNode{NodeID: id}}
	return ReplyID{ID: uuid.UUID(id)}, inverse, nil
}

func (s *Store) recreateNode(ctx context.Context, graph GraphID, k RecreateNode) (Reply, Action, error) {
	err := s.runMutation(ctx, graph, func(tx Tx) error {
		if err := tx.CreateVertex(ctx, graph, k.NodeID, k.Props); err != nil {
			return WrapErr(ErrCreateNode, err)
		}
		for _, ep := range k.Edges {
			ok, err := tx.CreateEdge(ctx, graph, ep.Edge, ep.Props)
			if err != nil {
				return WrapErr(ErrCreateEdge, err)
			}
			if !ok {
				return ErrCreateEdgeFailed
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: DeleteNode{NodeID: k.NodeID}}
	return ReplyID{ID: uuid.UUID(k.NodeID)}, inverse, nil
}

func (s *Store) updateNode(ctx context.Context, graph GraphID, k UpdateNode) (Reply, Action, error) {
	prev, err := s.backend.GetVertexProperties(ctx, graph, k.NodeID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrNodeNotFound)
	}

	err = s.runMutation(ctx, graph, func(tx Tx) error {
		if err := tx.SetVertexProperties(ctx, graph, k.NodeID, k.Props); err != nil {
			return WrapErr(ErrUpdateNode, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: UpdateNode{NodeID: k.NodeID, Props: prev}}
	return ReplyEmpty{}, inverse, nil
}

// deleteNode captures the node's properties and every incident edge
// (with its properties) before deleting anything, so RecreateNode's
// inverse is lossless (spec §4.1 algorithmic notes).
func (s *Store) deleteNode(ctx context.Context, graph GraphID, id NodeID) (Reply, Action, error) {
	prevProps, err := s.backend.GetVertexProperties(ctx, graph, id)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrNodeNotFound)
	}
	outbound, inbound, err := s.backend.GetEdges(ctx, graph, id)
	if err != nil {
		return nil, nil, WrapErr(ErrGetEdges, err)
	}

	all := make([]Edge, 0, len(outbound)+len(inbound))
	all = append(all, outbound...)
	all = append(all, inbound...)

	edgesWithProps := make([]EdgeWithProps, 0, len(all))
	for _, e := range all {
		props, err := s.backend.GetEdgeProperties(ctx, graph, e)
		if err != nil {
			return nil, nil, WrapErr(ErrGetEdgeProperties, err)
		}
		edgesWithProps = append(edgesWithProps, EdgeWithProps{Edge: e, Props: props})
	}

	err = s.runMutation(ctx, graph, func(tx Tx) error {
		for _, e := range all {
			if err := tx.DeleteEdge(ctx, graph, e); err != nil {
				return WrapErr(ErrDeleteEdge, err)
			}
		}
		if err := tx.DeleteVertex(ctx, graph, id); err != nil {
			return WrapErr(ErrDeleteNode, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: RecreateNode{NodeID: id, Props: prevProps, Edges: edgesWithProps}}
	return ReplyEmpty{}, inverse, nil
}

func (s *Store) createEdge(ctx context.Context, graph GraphID, k CreateEdge) (Reply, Action, error) {
	raw, err := newID()
	if err != nil {
		return nil, nil, WrapErr(ErrCreateEdge, err)
	}
	edgeType := EdgeType(raw)
	edge := Edge{From: k.From, To: k.To, Type: edgeType}

	err = s.runMutation(ctx, graph, func(tx Tx) error {
		ok, err := tx.CreateEdge(ctx, graph, edge, k.Props)
		if err != nil {
			return WrapErr(ErrCreateEdge, err)
		}
		if !ok {
			return ErrCreateEdgeFailed
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: DeleteEdge{Edge: edge}}
	return ReplyEdgeType{EdgeType: edgeType}, inverse, nil
}

// updateEdge captures the *edge's* previous properties via
// GetEdgeProperties, not read_node — spec §9 open question 5 calls out
// a source backend that read the wrong thing here as a bug.
func (s *Store) updateEdge(ctx context.Context, graph GraphID, k UpdateEdge) (Reply, Action, error) {
	prev, err := s.backend.GetEdgeProperties(ctx, graph, k.Edge)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrNodeNotFound)
	}

	err = s.runMutation(ctx, graph, func(tx Tx) error {
		if err := tx.SetEdgeProperties(ctx, graph, k.Edge, k.Props); err != nil {
			return WrapErr(ErrUpdateEdgeProps, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: UpdateEdge{Edge: k.Edge, Props: prev}}
	return ReplyEmpty{}, inverse, nil
}

func (s *Store) deleteEdge(ctx context.Context, graph GraphID, edge Edge) (Reply, Action, error) {
	prev, err := s.backend.GetEdgeProperties(ctx, graph, edge)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrNodeNotFound)
	}

	err = s.runMutation(ctx, graph, func(tx Tx) error {
		if err := tx.DeleteEdge(ctx, graph, edge); err != nil {
			return WrapErr(ErrDeleteEdge, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	inverse := MutateAction{GraphID: graph, Kind: CreateEdge{From: edge.From, To: edge.To, Props: prev}}
	return ReplyEmpty{}, inverse, nil
}

// query dispatches a read-only QueryKind. Queries never produce an
// inverse and never touch the undo/redo stacks.
func (s *Store) query(ctx context.Context, kind QueryKind) (Reply, error) {
	switch q := kind.(type) {
	case ListGraphs:
		ids, err := s.backend.ListGraphRoots(ctx)
		if err != nil {
			return nil, WrapErr(ErrGetNodes, err)
		}
		nodes := make([]NodeWithProps, 0, len(ids))
		for _, id := range ids {
			props, err := s.backend.GetVertexProperties(ctx, GraphID(id), id)
			if err != nil {
				return nil, mapNotFound(err, ErrNodeNotFound)
			}
			nodes = append(nodes, NodeWithProps{ID: id, Props: props})
		}
		return ReplyNodeList{Nodes: nodes}, nil

	case ReadNode:
		graph, err := s.backend.ResolveNodeGraph(ctx, q.NodeID)
		if err != nil {
			return nil, mapNotFound(err, ErrNodeNotFound)
		}
		node, err := s.readNode(ctx, graph, q.NodeID)
		if err != nil {
			return nil, err
		}
		return ReplyNode{Node: node}, nil

	case ReadEdgeProperties:
		graph, err := s.backend.ResolveNodeGraph(ctx, q.Edge.From)
		if err != nil {
			return nil, mapNotFound(err, ErrNodeNotFound)
		}
		props, err := s.backend.GetEdgeProperties(ctx, graph, q.Edge)
		if err != nil {
			return nil, mapNotFound(err, ErrNodeNotFound)
		}
		return ReplyProperties{Props: props}, nil

	case ReadGraph:
		g, err := s.readGraph(ctx, q.GraphID)
		if err != nil {
			return nil, err
		}
		return ReplyGraph{Graph: g}, nil

	default:
		return nil, WrapErr(ErrInvalidID, errors.New("store: unknown query kind"))
	}
}

func (s *Store) readNode(ctx context.Context, graph GraphID, id NodeID) (Node, error) {
	props, err := s.backend.GetVertexProperties(ctx, graph, id)
	if err != nil {
		return Node{}, mapNotFound(err, ErrNodeNotFound)
	}
	outbound, inbound, err := s.backend.GetEdges(ctx, graph, id)
	if err != nil {
		return Node{}, WrapErr(ErrGetEdges, err)
	}
	return Node{ID: id, Properties: props, Outbound: outbound, Inbound: inbound}, nil
}

func (s *Store) readGraph(ctx context.Context, graph GraphID) (Graph, error) {
	rootProps, err := s.backend.GetVertexProperties(ctx, graph, NodeID(graph))
	if err != nil {
		return Graph{}, mapNotFound(err, ErrGraphNotFound)
	}
	stateID, _ := AsUint64(rootProps[KeyStateID])

	childIDs, err := s.backend.ListChildren(ctx, graph)
	if err != nil {
		return Graph{}, WrapErr(ErrGetNodes, err)
	}
	nodes := make([]Node, 0, len(childIDs))
	for _, id := range childIDs {
		n, err := s.readNode(ctx, graph, id)
		if err != nil {
			return Graph{}, err
		}
		nodes = append(nodes, n)
	}
	return Graph{ID: graph, StateID: stateID, Nodes: nodes}, nil
}

func mapNotFound(err error, sentinel error) error {
	if errors.Is(err, ErrNotFound) {
		return sentinel
	}
	return WrapErr(sentinel, err)
}
