package main

import (
	"github.com/draftsmith/draftsmith/config"
	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/repositories"
	"github.com/draftsmith/draftsmith/routes"
	"github.com/draftsmith/draftsmith/services"
	"github.com/draftsmith/draftsmith/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Blog{})

	blogs := repositories.NewGormBlogRepository(db)
	users := repositories.NewGormUserRepository(db)

	store, err := services.NewS3ObjectStore(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object store init failed: %v", err)
	}

	blogService := services.NewBlogService(blogs, users, store)

	r := routes.SetupRouter(blogService, users)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
