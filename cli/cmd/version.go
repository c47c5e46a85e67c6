package cmd

import (
	"encoding/json"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/flowpilot-io/flowpilot/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. It must not contact the
// decision process or open any socket.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(_ *cli.Context) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(VersionResponse{
			Version: types.Version,
			Commit:  commit,
		})
	}
}
