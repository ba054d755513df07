package obscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/atifjaved999/mini-coaching/internal/tools/common"
	"github.com/atifjaved999/mini-coaching/internal/tools/ui"
)

type options struct {
	serviceURL string
	grafanaURL string
	window     time.Duration
	ci         bool
}

// NewRootCommand builds the observability smoke check: `run` fires one
// request at the service, then asks Grafana for a trace exemplar emitted
// inside the check window, proving the metrics-to-traces link works.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "obscheck",
		Short:        "End-to-end observability smoke check",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.serviceURL, "service-url", "http://localhost:8080", "base URL of the running service")
	root.PersistentFlags().StringVar(&opts.grafanaURL, "grafana-url", "http://localhost:3000", "base URL of Grafana")
	root.PersistentFlags().DurationVar(&opts.window, "window", 5*time.Minute, "how far back to look for exemplars")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "print a single JSON result instead of the UI")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Probe the service and verify a trace exemplar landed",
		RunE: func(cmd *cobra.Command, args []string) error {
			action := func(ctx context.Context) ([]string, error) {
				start := time.Now()
				if err := probeService(ctx, *opts); err != nil {
					return nil, err
				}
				traceID, err := fetchTraceIDFromExemplar(ctx, *opts, start)
				if err != nil {
					return nil, err
				}
				return []string{
					"service responded to /health",
					fmt.Sprintf("trace exemplar found: %s", traceID),
				}, nil
			}
			if opts.ci {
				details, err := action(context.Background())
				common.PrintCIResult(err == nil, "obscheck run", details, err)
				return err
			}
			_, err := ui.Run("obscheck run", action)
			return err
		},
	})
	return root
}

func probeService(ctx context.Context, opts options) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.serviceURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health returned %d", resp.StatusCode)
	}
	return nil
}

func grafanaGET(ctx context.Context, opts options, path string) ([]byte, error) {
	full := opts.grafanaURL + path
	if _, err := url.Parse(full); err != nil {
		return nil, fmt.Errorf("parse grafana url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grafana returned %d for %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

type exemplarResponse struct {
	Data []struct {
		Exemplars []struct {
			Timestamp float64           `json:"timestamp"`
			Labels    map[string]string `json:"labels"`
		} `json:"exemplars"`
	} `json:"data"`
}

// fetchTraceIDFromExemplar returns the trace id of the most recent
// exemplar recorded at or after since.
func fetchTraceIDFromExemplar(ctx context.Context, opts options, since time.Time) (string, error) {
	end := time.Now()
	path := fmt.Sprintf(
		"/api/datasources/proxy/1/api/v1/query_exemplars?query=http_request_duration_seconds_bucket&start=%d&end=%d",
		end.Add(-opts.window).Unix(), end.Unix(),
	)
	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return "", err
	}
	var parsed exemplarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode exemplar response: %w", err)
	}
	var best string
	var bestTS float64
	cutoff := float64(since.Unix())
	for _, series := range parsed.Data {
		for _, ex := range series.Exemplars {
			if ex.Timestamp < cutoff || ex.Timestamp < bestTS {
				continue
			}
			if id, ok := ex.Labels["trace_id"]; ok && id != "" {
				best = id
				bestTS = ex.Timestamp
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("no trace exemplar recorded since %s", since.Format(time.RFC3339))
	}
	return best, nil
}
