package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newListCmd creates the list command for showing stored playlists.
func newListCmd() *cobra.Command {
	var (
		userID string
		term   string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored playlists",
		Long:  `List playlists saved with "import --save", newest first.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := initializeServices(conf, true)
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if userID == "" && !all {
				userID = svc.userID
			}
			if err := runList(cmd.Context(), svc, userID, term, os.Stdout); err != nil {
				log.WithError(err).Fatal("Failed to list playlists")
			}
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Owner of the playlists (default from STORE_USER_ID)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List playlists of every user")
	cmd.Flags().StringVarP(&term, "search", "s", "", "Only show playlists whose name contains this text")

	return cmd
}

// newDeleteCmd creates the delete command for removing a stored playlist.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored playlist",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := initializeServices(conf, true)
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if err := svc.playlists.DeletePlaylist(cmd.Context(), args[0]); err != nil {
				log.WithError(err).Fatal("Failed to delete playlist")
				return
			}
			fmt.Printf("🗑️  Deleted playlist %s\n", args[0])
		},
	}
}

// runList prints stored playlists of userID matching term to w.
func runList(ctx context.Context, svc *services, userID, term string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := svc.playlists.ListPlaylists(ctx, userID)
	if err != nil {
		return err
	}
	rows = svc.playlists.FilterPlaylistsBySearch(rows, term)

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stored playlists found.")
		return nil
	}

	fmt.Fprintf(w, "📋 %d stored playlist(s):\n\n", len(rows))
	for i, r := range rows {
		name := r.Name
		if name == "" {
			name = "(untitled)"
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
		fmt.Fprintf(w, "   🆔 %s\n", r.ID)
		fmt.Fprintf(w, "   🎵 %d track(s), updated %s\n", len(r.Tracks), r.UpdatedAt.Format("Jan 2, 2006 15:04"))
	}
	return nil
}
