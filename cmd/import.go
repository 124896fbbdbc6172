package main

import (
	"github.com/spf13/cobra"
	"github.com/yakoovad/productsite/internal/db"
	"github.com/yakoovad/productsite/internal/repository"
	"github.com/yakoovad/productsite/internal/service"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the content directory into Postgres",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := logger.WithLogger(cmd.Context(), appLogger)

		files, err := repository.NewFileSource(appConfig.Content.Dir)
		if err != nil {
			return err
		}
		members, err := files.TeamMembers(ctx)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, appConfig.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err = db.Migrate(ctx, pool); err != nil {
			return err
		}

		importer := service.NewImportService(db.NewPgxTransactor(pool)).
			WithPageRepo(repository.NewPgxPageRepository(pool)).
			WithPostRepo(repository.NewPgxPostRepository(pool)).
			WithTagRepo(repository.NewPgxTagRepository(pool)).
			WithMemberRepo(repository.NewPgxMemberRepository(pool))

		stats, svcErr := importer.Import(ctx, &service.Bundle{
			Pages:   files.Pages(),
			Posts:   files.Posts(),
			Members: members,
		})
		if svcErr != nil {
			return svcErr
		}

		appLogger.Info("content imported",
			zap.Int("pages", stats.Pages),
			zap.Int("posts", stats.Posts),
			zap.Int("tags", stats.Tags),
			zap.Int("members", stats.Members))
		return nil
	},
}
