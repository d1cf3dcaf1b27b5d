package cli

import (
	"context"
	"fmt"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
	"kingdojo/internal/config"
	"kingdojo/internal/platform/postgres"
)

// openFromConfig connects the app pool (accounts, migrations) and the
// service-role pool (allowlist) described by DOJOCTL_-prefixed or shared env.
func openFromConfig(ctx context.Context) (*Env, error) {
	cfg, err := config.LoadService("DOJOCTL_")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	serviceDB, err := postgres.Connect(ctx, cfg.ServiceDatabase.Database())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("service database: %w", err)
	}

	return &Env{
		Admin:     cfg.Admin,
		Allowlist: admin.NewAllowlistRepo(serviceDB),
		Users: auth.NewService(auth.NewRepository(db), auth.Config{
			AccessTokenTTL:  cfg.Admin.AccessTokenTTL,
			RefreshTokenTTL: cfg.Admin.SessionTTL(),
			ReuseGrace:      cfg.Admin.RefreshGrace,
		}),
		Migrate: func(ctx context.Context) error { return postgres.Migrate(ctx, db, cfg.ServiceDatabase.Role) },
		Close: func() {
			serviceDB.Close()
			db.Close()
		},
	}, nil
}
