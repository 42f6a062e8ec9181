package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/patungan/internal/config"
	"github.com/mmynk/patungan/internal/models"
)

func identityCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage who you are",
	}
	cmd.AddCommand(identitySetCmd(opts))
	cmd.AddCommand(identityShowCmd(opts))
	return cmd
}

func identitySetCmd(opts *options) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set your name and email",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := models.NewIdentity(name, email)
			if err != nil {
				return err
			}

			a.profile.Identity = id
			if opts.serverURL != "" {
				a.profile.Server.URL = opts.serverURL
			}
			if err := config.SaveProfile(opts.dir, a.profile); err != nil {
				return err
			}

			if a.remote != nil {
				if err := a.remote.UpsertUser(ctx, &models.User{Email: id.Email, Name: id.Name}); err != nil {
					fmt.Fprintln(a.errOut, "! Could not register with server:", err)
				}
			}

			a.printf("Hi %s <%s>\n", id.Name, id.Email)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func identityShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current identity and server",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if a.profile.Identity.IsZero() {
				return errNoIdentity
			}
			a.printf("Name:   %s\n", a.profile.Identity.Name)
			a.printf("Email:  %s\n", a.profile.Identity.Email)

			server := a.profile.Server.URL
			if opts.serverURL != "" {
				server = opts.serverURL
			}
			switch {
			case server == "":
				a.printf("Server: (offline)\n")
			case opts.offline:
				a.printf("Server: %s (offline)\n", server)
			default:
				a.printf("Server: %s\n", server)
			}
			return nil
		}),
	}
}
