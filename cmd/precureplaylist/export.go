package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/storage"
)

type exportOptions struct {
	input      string
	output     string
	format     string
	spotifyID  string
	storedID   string
	name       string
	allowEmpty bool
}

// newExportCmd creates the export command for building playlist documents.
func newExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export [input]",
		Short: "Export a playlist as a Precure playlist document",
		Long: `Export a playlist as a Precure playlist document.
The input may be one of our documents, a raw Spotify playlist response, or an
array of tracks. It is read from a file, "-" for stdin, "clipboard:", a
gs://bucket/object location, or an http(s) URL. Only Precure tracks are kept.
Use --spotify to export a playlist straight from Spotify, or --stored to
export a playlist saved with "import --save".`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				opts.input = args[0]
			}
			svc, err := initializeServices(conf, opts.storedID != "")
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if err := runExport(cmd.Context(), svc, opts); err != nil {
				log.WithError(err).Fatal("Export failed")
			}
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", storage.StdioLocation, "Where to write the document")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Document format: detailed or simple (default from PLAYLIST_DEFAULT_FORMAT)")
	cmd.Flags().StringVar(&opts.spotifyID, "spotify", "", "Export the Spotify playlist with this id")
	cmd.Flags().StringVar(&opts.storedID, "stored", "", "Export the stored playlist with this id")
	cmd.Flags().StringVar(&opts.name, "name", "", "Override the playlist name")
	cmd.Flags().BoolVar(&opts.allowEmpty, "allow-empty", false, "Write a document even when no Precure track is found")
	cmd.MarkFlagsMutuallyExclusive("spotify", "stored")

	return cmd
}

// runExport builds a document from the selected source and writes it out.
func runExport(ctx context.Context, svc *services, opts *exportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format := svc.defaultFormat
	if opts.format != "" {
		f, err := codec.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	}

	var (
		result *playlist.ExportResult
		err    error
	)

	switch {
	case opts.spotifyID != "":
		if err := svc.ensureSpotify(); err != nil {
			return err
		}
		result, err = svc.playlists.ExportFromSpotify(ctx, opts.spotifyID, format, opts.allowEmpty)
	case opts.storedID != "":
		result, err = svc.playlists.Export(ctx, playlist.ExportRequest{
			PlaylistID: opts.storedID,
			Format:     format,
			AllowEmpty: opts.allowEmpty,
		})
	default:
		if opts.input == "" {
			return errors.New("an input location, --spotify, or --stored is required")
		}
		result, err = exportInput(ctx, svc, opts, format)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	data = append(data, '\n')

	if err := svc.io.Write(ctx, opts.output, data); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"source_kind":    result.Source,
		"original_count": result.OriginalCount,
		"exported_count": result.ExportedCount,
		"format":         string(format),
		"output":         opts.output,
	}).Info("Exported playlist document")
	return nil
}

func exportInput(ctx context.Context, svc *services, opts *exportOptions, format codec.Format) (*playlist.ExportResult, error) {
	data, err := svc.io.Read(ctx, opts.input)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Parse(data)
	if err != nil {
		return nil, err
	}

	req := playlist.ExportRequest{Raw: raw, Format: format, AllowEmpty: opts.allowEmpty}
	if opts.name != "" {
		meta := codec.ExtractMeta(raw)
		meta.Name = opts.name
		req.Meta = &meta
	}
	return svc.playlists.Export(ctx, req)
}
