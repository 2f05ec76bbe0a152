package gateway

import (
	"github.com/spf13/cobra"

	"github.com/motorline/storefront-gateway/internal/business"
	"github.com/motorline/storefront-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"gateway",
		"Storefront Gateway API server",
		"Storefront Gateway hosts the authenticated proxy between the storefront and the commerce API",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
