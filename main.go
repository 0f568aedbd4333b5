// zoomgrab — Zoom cloud-recording downloader.
//
// Drives a headless Chrome through the share-link passcode flow, captures
// the media requests the player issues, downloads the screen-share and
// face-camera tracks with a matching TLS fingerprint, and reconstructs the
// screen-sharing timeline from the player UI.
//
// Single job or batch via a CSV manifest. See internal/cli for the command
// surface.
package main

import (
	"os"

	"github.com/anatolykoptev/zoomgrab/internal/cli"
	"github.com/anatolykoptev/zoomgrab/internal/output"
)

func main() {
	if err := cli.Execute(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}
