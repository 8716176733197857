// Command stubctl is a thin client for the stubbery admin HTTP surface:
// it posts stub definitions and state searches read from JSON files,
// grounded on the cobra command-tree idiom.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:   "stubctl",
		Short: "Admin client for a running stubbery server",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "stubbery admin base URL")

	root.AddCommand(stubCmd(), stateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func stubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Manage stubs",
	}
	cmd.AddCommand(stubCreateCmd())
	return cmd
}

func stubCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file.json>",
		Short: "Register a stub from a JSON definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			resp, err := post(serverURL+"/admin/stub", body)
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect recorded state",
	}
	cmd.AddCommand(stateSearchCmd())
	return cmd
}

func stateSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <predicate.json>",
		Short: "Search recorded states against a JSON predicate spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			resp, err := post(serverURL+"/admin/state/search", body)
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func post(url string, body []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return "", fmt.Errorf("not valid JSON: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("server returned %s: %s", resp.Status, out)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		return string(out), nil
	}
	return pretty.String(), nil
}
