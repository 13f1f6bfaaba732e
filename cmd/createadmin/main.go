// Command createadmin ensures the configured admin account exists. It reads
// the same configuration as the server (STUDYPLANET_* environment, config
// files, flags) and does nothing when a user with admin_email exists.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/studyplanet/internal/app/bootstrap"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("createadmin failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_email and admin_password must be set (STUDYPLANET_ADMIN_EMAIL, STUDYPLANET_ADMIN_PASSWORD)")
	}

	deps, err := bootstrap.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return err
	}
	defer bootstrap.Shutdown(context.Background(), coreCfg, appCfg, deps, logger)

	if err := bootstrap.EnsureSchema(ctx, coreCfg, appCfg, deps, logger); err != nil {
		return err
	}

	created, err := bootstrap.EnsureAdmin(ctx, deps.MongoDatabase, bootstrap.AdminSpec{
		Email:     appCfg.AdminEmail,
		Password:  appCfg.AdminPassword,
		FirstName: appCfg.AdminFirstName,
		LastName:  appCfg.AdminLastName,
	}, logger)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("Admin already exists: %s\n", appCfg.AdminEmail)
		return nil
	}
	fmt.Println("Admin user created:")
	fmt.Printf("  email: %s\n", appCfg.AdminEmail)
	fmt.Println("You can now login at POST /api/v1/auth/login")
	return nil
}
