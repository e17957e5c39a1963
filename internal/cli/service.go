package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"basegraph.app/approvals/common/id"
	"basegraph.app/approvals/core/config"
	"basegraph.app/approvals/core/db"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store"
)

// cliNodeID keeps ids minted here apart from the server (1) and worker (2).
const cliNodeID = 3

func newServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Provision service credentials",
	}
	cmd.AddCommand(newServiceCreateCommand())
	cmd.AddCommand(newServiceDeactivateCommand())
	return cmd
}

type createdService struct {
	*model.ServiceIdentity
	Secret string `json:"secret"`
}

func newServiceCreateCommand() *cobra.Command {
	var (
		name        string
		permissions []string
		rateLimit   int32
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service identity and print its secret once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			params := service.CreateServiceIdentityParams{Name: name}
			for _, p := range permissions {
				params.Permissions = append(params.Permissions, model.Permission(p))
			}
			if cmd.Flags().Changed("rate-limit") {
				params.RateLimit = &rateLimit
			}

			return withIdentities(cmd.Context(), func(identities service.ServiceIdentityService) error {
				identity, secret, err := identities.Create(cmd.Context(), params)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, createdService{ServiceIdentity: identity, Secret: secret})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Service name")
	cmd.Flags().StringSliceVarP(&permissions, "permission", "p", nil, "Granted permission, repeatable (e.g. approvals:write, *)")
	cmd.Flags().Int32Var(&rateLimit, "rate-limit", service.DefaultRateLimit, "Requests per rate limit window")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("permission")
	return cmd
}

func newServiceDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <service-id>",
		Short: "Revoke a service credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			serviceID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid service id %q", args[0])
			}

			return withIdentities(cmd.Context(), func(identities service.ServiceIdentityService) error {
				identity, err := identities.Deactivate(cmd.Context(), serviceID)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, identity)
			})
		},
	}
}

func withIdentities(ctx context.Context, fn func(service.ServiceIdentityService) error) error {
	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := id.Init(cliNodeID); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	stores := store.NewStores(database.Queries())
	return fn(service.NewServiceIdentityService(stores.ServiceIdentities(), slog.Default()))
}
