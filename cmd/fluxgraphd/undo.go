package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/fluxgraph/store"
)

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Dispatch Undo on a fresh store over the configured backend (its undo stack starts empty, so this reports an empty undo buffer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s *store.Store) error {
				if _, err := s.Execute(cmd.Context(), store.UndoAction{}); err != nil {
					return fmt.Errorf("undo: %w", err)
				}
				fmt.Println("undone")
				return nil
			})
		},
	}
}

func newRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Dispatch Redo on a fresh store over the configured backend (its redo stack starts empty, so this reports an empty redo buffer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s *store.Store) error {
				if _, err := s.Execute(cmd.Context(), store.RedoAction{}); err != nil {
					return fmt.Errorf("redo: %w", err)
				}
				fmt.Println("redone")
				return nil
			})
		},
	}
}
