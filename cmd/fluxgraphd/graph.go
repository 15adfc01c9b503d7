package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dshills/fluxgraph/store"
)

func newGraphCmd() *cobra.Command {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and mutate graphs on the configured backend",
	}
	graphCmd.AddCommand(newGraphCreateCmd())
	graphCmd.AddCommand(newGraphDeleteCmd())
	graphCmd.AddCommand(newGraphShowCmd())
	return graphCmd
}

func newGraphCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new empty graph and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s *store.Store) error {
				reply, err := s.Execute(cmd.Context(), store.CreateGraphAction{Props: store.Properties{}})
				if err != nil {
					return fmt.Errorf("create graph: %w", err)
				}
				fmt.Println(reply.(store.ReplyID).ID)
				return nil
			})
		},
	}
}

func newGraphDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <graph-id>",
		Short: "Delete a graph and every node reachable from its root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid graph id: %w", err)
			}
			return withStore(cmd.Context(), func(s *store.Store) error {
				if _, err := s.Execute(cmd.Context(), store.DeleteGraphAction{GraphID: store.GraphID(id)}); err != nil {
					return fmt.Errorf("delete graph: %w", err)
				}
				fmt.Println("deleted")
				return nil
			})
		},
	}
}

func newGraphShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <graph-id>",
		Short: "Print the graph root's direct children as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid graph id: %w", err)
			}
			return withStore(cmd.Context(), func(s *store.Store) error {
				reply, err := s.Execute(cmd.Context(), store.QueryAction{Kind: store.ReadGraph{GraphID: store.GraphID(id)}})
				if err != nil {
					return fmt.Errorf("read graph: %w", err)
				}
				encoded, err := json.MarshalIndent(reply.(store.ReplyGraph).Graph, "", "  ")
				if err != nil {
					return fmt.Errorf("encode graph: %w", err)
				}
				fmt.Println(string(encoded))
				return nil
			})
		},
	}
}
