package version

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/color"
	"github.com/vodrip/vodrip/constant"
	"github.com/vodrip/vodrip/icon"
	"github.com/vodrip/vodrip/key"
	"github.com/vodrip/vodrip/style"
	"github.com/vodrip/vodrip/util"
)

// Notify prints a notice when a newer release is available.
func Notify(ctx context.Context, client *http.Client) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest(ctx, client)
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/"+constant.Repository+"/releases/tag/v"+version),
	)
}
