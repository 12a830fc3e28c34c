package client

import (
	"context"
	"fmt"
	"regexp"

	goversion "github.com/hashicorp/go-version"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ServerVersion reads the numeric server version for the client's provider.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	var query string
	switch c.provider {
	case "postgresql", "postgres":
		query = "SELECT version()"
	case "mysql":
		query = "SELECT VERSION()"
	case "sqlite":
		query = "SELECT sqlite_version()"
	default:
		return "", fmt.Errorf("unsupported provider: %s", c.provider)
	}

	var raw string
	if err := c.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return "", fmt.Errorf("read server version: %w", err)
	}

	v := versionPattern.FindString(raw)
	if v == "" {
		return "", fmt.Errorf("unparseable server version %q", raw)
	}
	return v, nil
}

// RequireServerVersion fails when the server is older than min. Sync relies
// on upsert support, so it gates on the server version before starting.
func (c *Client) RequireServerVersion(ctx context.Context, min string) error {
	raw, err := c.ServerVersion(ctx)
	if err != nil {
		return err
	}

	have, err := goversion.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("server version %q: %w", raw, err)
	}
	want, err := goversion.NewVersion(min)
	if err != nil {
		return fmt.Errorf("minimum version %q: %w", min, err)
	}

	if have.LessThan(want) {
		return fmt.Errorf("server version %s is below required %s", have, want)
	}
	return nil
}
