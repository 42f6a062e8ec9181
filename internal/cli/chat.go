package cli

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/patungan/pkg/api"
)

func chatCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the assistant about using the app",
	}
	cmd.AddCommand(chatSendCmd(opts))
	cmd.AddCommand(chatHistoryCmd(opts))
	cmd.AddCommand(chatClearCmd(opts))
	return cmd
}

func chatSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send MESSAGE...",
		Short: "Send a message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			if a.remote == nil {
				return errors.New("the assistant needs a server connection")
			}

			req := connect.NewRequest(&api.SendMessageRequest{Message: joinArgs(args)})
			api.SetIdentity(req.Header(), owner, a.profile.Identity.Name)
			resp, err := a.remote.Chat().SendMessage(ctx, req)
			if err != nil {
				return err
			}

			a.printf("%s\n", resp.Msg.Reply.Content)
			// Refresh the local copy of the conversation.
			a.repo.LoadChat(ctx, owner)
			return nil
		}),
	}
}

func chatHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the conversation",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			msgs := a.repo.LoadChat(ctx, owner)
			if len(msgs) == 0 {
				a.printf("No messages yet.\n")
				return nil
			}
			for _, m := range msgs {
				a.printf("[%s] %s\n", m.Role, m.Content)
			}
			return nil
		}),
	}
}

func chatClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the conversation",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			if !a.repo.ClearChat(ctx, owner) && a.repo.Online() {
				return errors.New("chat history was not cleared on the server")
			}
			a.printf("Chat history cleared.\n")
			return nil
		}),
	}
}

func resetCmd(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset --all",
		Short: "Delete all of your bills, notes and chat history",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if !all {
				return errors.New("refusing to reset without --all")
			}
			owner, err := a.owner()
			if err != nil {
				return err
			}
			if a.repo.DeleteOwnerData(ctx, owner) {
				a.printf("All data deleted.\n")
			} else {
				a.printf("Local data deleted; the server was not reached.\n")
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "confirm deleting everything")
	return cmd
}
