// syncctl is the operator CLI for the catalog sync engine. It drives the
// admin HTTP surface of a running server, so it needs an admin bearer token.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	addr  string
	token string
)

func main() {
	root := &cobra.Command{
		Use:           "syncctl",
		Short:         "Operate the Square catalog sync of a running server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", envOr("SYNCCTL_ADDR", "http://localhost:8000"), "server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("SYNCCTL_TOKEN"), "admin bearer token")

	root.AddCommand(
		syncCmd(),
		diagnoseCmd(),
		resetCmd(),
		runsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func syncCmd() *cobra.Command {
	var categories, flags bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger a full catalog sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			if categories {
				if err := call("POST", "/admin/sync/categories"); err != nil {
					return err
				}
			}
			if flags {
				return call("POST", "/admin/sync/flags")
			}
			return call("POST", "/admin/sync/catalog")
		},
	}
	cmd.Flags().BoolVar(&categories, "categories", false, "bind whitelist categories to Square IDs first")
	cmd.Flags().BoolVar(&flags, "flags-only", false, "recheck item flags without a full sync")
	return cmd
}

func diagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Report how many remote items survive each filtering stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/admin/sync/filter-check")
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all synced catalog rows (items, lists, modifiers, links)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return call("POST", "/admin/sync/reset")
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", fmt.Sprintf("/admin/sync/runs?limit=%d", limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

// call performs one admin API request and pretty-prints the JSON response.
func call(method, path string) error {
	if token == "" {
		return fmt.Errorf("missing admin token (set --token or SYNCCTL_TOKEN)")
	}

	req, err := http.NewRequest(method, strings.TrimRight(addr, "/")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	// Full syncs walk the whole remote catalog, so allow generous time.
	client := &http.Client{Timeout: 10 * time.Minute}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Println(string(body))
	}

	if res.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", method, path, res.Status)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
