// Package main is the entry point of vodrip.
package main

import (
	"github.com/samber/lo"
	"github.com/vodrip/vodrip/cmd"
	"github.com/vodrip/vodrip/config"
	"github.com/vodrip/vodrip/download"
	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/util"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	if removed, err := download.PruneStaging(download.StaleAfter); err != nil {
		log.Warnf("pruning staging directories: %v", err)
	} else if removed > 0 {
		log.Infof("removed %s", util.Quantify(removed, "stale staging directory", "stale staging directories"))
	}

	cmd.Execute()
}
