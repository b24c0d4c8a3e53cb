package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sambigeara/permcalc/pkg/httpapi"
	"github.com/sambigeara/permcalc/pkg/server"
)

const statusTimeout = 5 * time.Second

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show health, system usage and conversion counts of a running server",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().String("url", "", "Base URL of the HTTP API (default derived from http.listen)")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	dir, err := stateDir(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	health, err := server.Probe(ctx, cfg.SocketPath(dir))
	if err != nil {
		return fmt.Errorf("permcalc is not running: %w", err)
	}

	base, _ := cmd.Flags().GetString("url")
	if base == "" {
		if base, err = localURL(cfg.HTTP.Listen); err != nil {
			return err
		}
	}

	m, err := fetchMetrics(ctx, &http.Client{}, base)
	if err != nil {
		return err
	}

	renderSections(cmd.OutOrStdout(), collectStatusSections(health, m))
	return nil
}

// localURL turns a listen address into something dialable from this host.
func localURL(listen string) (string, error) {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", fmt.Errorf("http.listen: %w", err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

func fetchMetrics(ctx context.Context, c *http.Client, base string) (httpapi.MetricsResponse, error) {
	var m httpapi.MetricsResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/metrics", nil)
	if err != nil {
		return m, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return m, fmt.Errorf("fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return m, fmt.Errorf("fetch metrics: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return m, fmt.Errorf("decode metrics: %w", err)
	}
	return m, nil
}

func collectStatusSections(health string, m httpapi.MetricsResponse) []section {
	srv := section{
		title:   "SERVER",
		headers: []string{"HEALTH", "UPTIME", "HOST UPTIME"},
		rows: [][]string{{
			strings.ToLower(health),
			formatSeconds(m.UptimeSeconds),
			formatSeconds(float64(m.HostUptimeSeconds)),
		}},
	}

	system := section{
		title:   "SYSTEM",
		headers: []string{"RESOURCE", "USED", "TOTAL", "PERCENT"},
		rows: [][]string{
			{"cpu", "-", fmt.Sprintf("%d cores", m.CPU.Count), formatPercent(m.CPU.Percent)},
			{"memory", formatBytes(m.Memory.Used), formatBytes(m.Memory.Total), formatPercent(m.Memory.Percent)},
			{"disk " + m.Disk.Path, formatBytes(m.Disk.Used), formatBytes(m.Disk.Total), formatPercent(m.Disk.Percent)},
		},
	}

	conversions := section{
		title:   "CONVERSIONS",
		headers: []string{"DIRECTION", "OUTCOME", "COUNT"},
	}
	var total int64
	for _, c := range m.Conversions {
		conversions.rows = append(conversions.rows, []string{c.Direction, c.Outcome, strconv.FormatInt(c.Count, 10)})
		total += c.Count
	}

	sections := []section{srv, system}
	if len(conversions.rows) > 0 {
		conversions.footer = fmt.Sprintf("conversions: %d", total)
		sections = append(sections, conversions)
	}
	return sections
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(time.Second).String()
}

func formatPercent(p float64) string { return strconv.FormatFloat(p, 'f', 1, 64) + "%" }

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
