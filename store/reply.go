package store

import "github.com/google/uuid"

// Reply is the sum type returned synchronously from Store.Execute
// (spec §3: "Reply … tagged variant (Id, NodeList, Node, Edge, Graph,
// Properties, Empty)").
type Reply interface{ isReply() }

// ReplyID carries a freshly created identifier: a GraphID from
// CreateGraph, a NodeID from CreateNode, or similar.
type ReplyID struct{ ID uuid.UUID }

func (ReplyID) isReply() {}

// NodeWithProps pairs a node id with its property map, used by
// ReplyNodeList for ListGraphs' "[(NodeId, Properties)]" result.
type NodeWithProps struct {
	ID    NodeID
	Props Properties
}

type ReplyNodeList struct{ Nodes []NodeWithProps }

func (ReplyNodeList) isReply() {}

type ReplyNode struct{ Node Node }

func (ReplyNode) isReply() {}

// ReplyEdgeType carries the fresh EdgeType CreateEdge assigned.
type ReplyEdgeType struct{ EdgeType EdgeType }

func (ReplyEdgeType) isReply() {}

type ReplyGraph struct{ Graph Graph }

func (ReplyGraph) isReply() {}

type ReplyProperties struct{ Props Properties }

func (ReplyProperties) isReply() {}

type ReplyEmpty struct{}

func (ReplyEmpty) isReply() {}
