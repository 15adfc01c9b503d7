package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newDeployCmd() *cobra.Command {
	var (
		serverURL string
		period    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy <graph-id>",
		Short: "Deploy a flow for periodic ticking on a running fluxgraphd serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"graph_id": args[0], "period_ms": period.Milliseconds()}
			resp, err := postAdmin(serverURL, "/admin/deploy", body)
			if err != nil {
				return err
			}
			fmt.Printf("deployed: %s\n", resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL(), "fluxgraphd server base URL")
	cmd.Flags().DurationVar(&period, "period", time.Second, "tick period")
	return cmd
}

func newUndeployCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "undeploy <graph-id>",
		Short: "Stop a deployed flow's periodic ticking on a running fluxgraphd serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := postAdmin(serverURL, "/admin/undeploy", map[string]any{"graph_id": args[0]})
			if err != nil {
				return err
			}
			fmt.Printf("undeployed: %s\n", resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL(), "fluxgraphd server base URL")
	return cmd
}

// defaultServerURL matches config.Default's listen address. Flag
// defaults are computed before cfg is loaded, so a non-default
// listen_address needs an explicit --server.
func defaultServerURL() string {
	return "http://127.0.0.1:8080"
}

func postAdmin(serverURL, path string, body map[string]any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	encoded, _ := json.Marshal(out)
	return string(encoded), nil
}
