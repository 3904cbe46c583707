package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/series"
	"github.com/toozej/precureplaylist/internal/stats"
)

type importOptions struct {
	input   string
	save    bool
	publish bool
	target  string
}

// newImportCmd creates the import command for validating and loading documents.
func newImportCmd() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <document>",
		Short: "Validate a playlist document and optionally save or publish it",
		Long: `Validate a playlist document and report what it contains.
The document is read from a file, "-" for stdin, "clipboard:", a
gs://bucket/object location, or an http(s) URL. Documents with no Precure
tracks are rejected. Use --save to keep the playlist in the local store and
--publish to create it on Spotify.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts.input = args[0]
			svc, err := initializeServices(conf, opts.save)
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if err := runImport(cmd.Context(), svc, opts, os.Stdout); err != nil {
				log.WithError(err).Fatal("Import failed")
			}
		},
	}

	cmd.Flags().BoolVarP(&opts.save, "save", "s", false, "Save the playlist in the local store")
	cmd.Flags().BoolVarP(&opts.publish, "publish", "p", false, "Publish the playlist to Spotify")
	cmd.Flags().StringVar(&opts.target, "target", "", "Add tracks to this existing Spotify playlist instead of creating one")

	return cmd
}

// runImport decodes the document and reports the outcome to w.
func runImport(ctx context.Context, svc *services, opts *importOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := svc.io.Read(ctx, opts.input)
	if err != nil {
		return err
	}

	raw, err := codec.Parse(data)
	if err != nil {
		de := &codec.DecodeError{Stage: codec.StageStart, Kind: codec.ErrMalformedDocument, Reason: err.Error()}
		printRejection(w, de)
		return de
	}

	if opts.publish {
		if err := svc.ensureSpotify(); err != nil {
			return err
		}
	}

	result, err := svc.playlists.Import(ctx, raw, playlist.ImportOptions{
		Save:             opts.save,
		UserID:           svc.userID,
		Publish:          opts.publish,
		TargetPlaylistID: opts.target,
	})
	if de, ok := codec.IsDecodeError(err); ok {
		printRejection(w, de)
		return err
	}
	if result != nil {
		printImportSummary(w, result, svc.classifier)
	}
	return err
}

func printRejection(w io.Writer, de *codec.DecodeError) {
	fmt.Fprintf(w, "❌ Document rejected (%s at stage %s)\n", de.Code(), de.Stage)
	fmt.Fprintf(w, "   %s\n", de.Reason)
}

func printImportSummary(w io.Writer, result *playlist.ImportResult, classifier series.Classifier) {
	d := result.Decoded
	name := d.Playlist.Name
	if name == "" {
		name = "(untitled)"
	}

	fmt.Fprintf(w, "\n✅ Accepted %s document: %s\n", d.Source, name)
	fmt.Fprintf(w, "   • Precure tracks: %d of %d\n", d.FilteredCount, d.OriginalCount)
	for _, warning := range d.Warnings {
		fmt.Fprintf(w, "   ⚠️  %s\n", warning.Message)
	}

	s := stats.Aggregate(d.Tracks, classifier)
	for _, name := range slices.Sorted(maps.Keys(s.SeriesBreakdown)) {
		fmt.Fprintf(w, "   🎀 %s: %d\n", name, s.SeriesBreakdown[name])
	}

	if result.Saved != nil {
		fmt.Fprintf(w, "   💾 Saved as %s\n", result.Saved.ID)
	}
	if p := result.Published; p != nil {
		fmt.Fprintf(w, "   🎵 Published to %s: %d added, %d already present, %d without a Spotify id\n",
			p.Playlist.Name, p.Added, p.Duplicates, p.Skipped)
		if p.Playlist.EmbedURL != "" {
			fmt.Fprintf(w, "   🔗 %s\n", p.Playlist.EmbedURL)
		}
	}
	fmt.Fprintln(w)
}
