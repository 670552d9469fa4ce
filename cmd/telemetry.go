package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/application"
	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// recordTelemetry writes the run metrics as a Prometheus textfile, for the
// node_exporter textfile collector. An empty path disables it.
func recordTelemetry(c *application.Container, path string) error {
	if path == "" || c.Metrics == nil {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, consts.DefaultDirPerm); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}

	if err := c.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
