package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/topsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config.toml from the embedded template.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	r.logger.Info("creating config file from template", "path", configPath)

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.writePlain("%s\n", styles.OK("Config written to "+configPath))
	r.writePlainln("Next steps:")
	r.writePlain("1. Set spotify.client_id, spotify.client_secret and spotify.user_id (or CLIENT_ID, CLIENT_SECRET, SPOTIFY_USER_ID in .env)\n")
	r.writePlain("2. Set storage.connection_string (or BLOB_STORAGE_CONNECTION_STRING) to enable snapshot exports\n")
	r.writePlain("3. Run 'topsync auth' to get an access token, or 'topsync serve' to start the service\n")

	return nil
}
