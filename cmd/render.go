package main

import (
	"github.com/spf13/cobra"
	"github.com/yakoovad/productsite/internal/service"
	"github.com/yakoovad/productsite/pkg/logger"
)

var renderBodyOnly bool

var renderCmd = &cobra.Command{
	Use:   "render <slug>",
	Short: "Print the composed product page for slug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.WithLogger(cmd.Context(), appLogger)

		src, err := openSource(ctx, appConfig)
		if err != nil {
			return err
		}
		defer src.Close()

		composer, err := newComposer(src, appConfig)
		if err != nil {
			return err
		}
		pages := service.NewPageService(src, composer)

		if renderBodyOnly {
			page, svcErr := pages.Compose(ctx, args[0])
			if svcErr != nil {
				return svcErr
			}
			_, err = cmd.OutOrStdout().Write([]byte(page.HTML))
			return err
		}

		out, svcErr := pages.Render(ctx, args[0])
		if svcErr != nil {
			return svcErr
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderBodyOnly, "body", false, "print only the composed body without the layout")
}
