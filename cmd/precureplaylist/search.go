package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/search"
	"github.com/toozej/precureplaylist/internal/types"
)

type searchOptions struct {
	input         string
	remote        bool
	limit         int
	minConfidence float64
}

// newSearchCmd creates the search command for finding tracks.
func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for Precure tracks",
		Long: `Search for tracks in a playlist document using fuzzy matching, or search
the Spotify catalog with --remote. A query of the form "artist - song" weights
the artist and song separately. Only Precure tracks are returned.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := initializeServices(conf, false)
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if err := runSearch(cmd.Context(), svc, opts, args[0], os.Stdout); err != nil {
				log.WithError(err).Fatal("Search failed")
			}
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Playlist document to search")
	cmd.Flags().BoolVarP(&opts.remote, "remote", "r", false, "Search the Spotify catalog instead of a document")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 20, "Maximum Spotify results to fetch")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", search.DefaultMinConfidence, "Minimum match confidence for document search")

	return cmd
}

// runSearch executes the search and displays results on w.
func runSearch(ctx context.Context, svc *services, opts *searchOptions, query string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("search query cannot be empty")
	}

	log.WithField("query", query).Debug("Starting track search")

	if opts.remote {
		if err := svc.ensureSpotify(); err != nil {
			return err
		}
		tracks, err := svc.playlists.SearchCatalog(ctx, query, opts.limit)
		if err != nil {
			return err
		}
		displayCatalogResults(w, tracks, query)
		return nil
	}

	if opts.input == "" {
		return errors.New("--input is required unless --remote is set")
	}

	data, err := svc.io.Read(ctx, opts.input)
	if err != nil {
		return err
	}
	raw, err := codec.Parse(data)
	if err != nil {
		return err
	}
	decoded, err := svc.playlists.Import(ctx, raw, playlist.ImportOptions{})
	if err != nil {
		return err
	}

	searcher := svc.searcher
	if opts.minConfidence != search.DefaultMinConfidence {
		searcher = search.NewTrackSearcher(svc.logger, opts.minConfidence)
	}
	matches := searcher.Search(decoded.Decoded.Tracks, query)

	displaySearchResults(w, matches, query)
	return nil
}

// displaySearchResults displays ranked document matches.
func displaySearchResults(w io.Writer, matches []search.TrackMatch, query string) {
	fmt.Fprintf(w, "\n🔍 Search Results for '%s':\n", query)
	if len(matches) == 0 {
		fmt.Fprintf(w, "No matching tracks found.\n\n")
		return
	}
	fmt.Fprintf(w, "Found %d matching track(s):\n\n", len(matches))

	for i, m := range matches {
		marker := "🎵"
		if m.IsHighConfidence() {
			marker = "🎯"
		}
		fmt.Fprintf(w, "%d. %s %s\n", i+1, marker, m.Track.String())
		fmt.Fprintf(w, "   📊 Confidence: %.2f (song: %.2f, artist: %.2f, album: %.2f)\n",
			m.Confidence, m.SongConfidence, m.ArtistConfidence, m.AlbumConfidence)
		if url := m.Track.SpotifyURL(); url != "" {
			fmt.Fprintf(w, "   🔗 %s\n", url)
		}
		fmt.Fprintln(w)
	}
}

// displayCatalogResults displays Spotify catalog tracks.
func displayCatalogResults(w io.Writer, tracks []types.Track, query string) {
	fmt.Fprintf(w, "\n🔍 Spotify Results for '%s':\n", query)
	if len(tracks) == 0 {
		fmt.Fprintf(w, "No Precure tracks found.\n\n")
		return
	}
	fmt.Fprintf(w, "Found %d Precure track(s):\n\n", len(tracks))

	for i := range tracks {
		t := &tracks[i]
		fmt.Fprintf(w, "%d. 🎵 %s\n", i+1, t.String())
		fmt.Fprintf(w, "   🆔 %s\n", t.ID)
		fmt.Fprintln(w)
	}
}
