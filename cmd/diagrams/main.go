// Command diagrams renders Graphviz architecture diagrams of precureplaylist
// into docs/diagrams/go-diagrams.
package main

import (
	"os"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/apps"
	"github.com/blushft/go-diagrams/nodes/gcp"
	"github.com/blushft/go-diagrams/nodes/programming"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := os.MkdirAll("docs/diagrams", 0o750); err != nil {
		log.WithError(err).Fatal("Failed to create diagrams directory")
	}
	if err := os.Chdir("docs/diagrams"); err != nil {
		log.WithError(err).Fatal("Failed to enter diagrams directory")
	}

	generateArchitectureDiagram()
	generateComponentDiagram()

	log.Info("Diagrams written to docs/diagrams/go-diagrams")
}

// generateArchitectureDiagram shows where documents come from and go to.
func generateArchitectureDiagram() {
	d, err := diagram.New(
		diagram.Filename("architecture"),
		diagram.Label("precureplaylist Architecture"),
		diagram.Direction("LR"),
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create architecture diagram")
	}

	user := apps.Client.User(diagram.NodeLabel("User / Browser"))
	cli := programming.Language.Go(diagram.NodeLabel("precureplaylist CLI"))
	api := gcp.Compute.ComputeEngine(diagram.NodeLabel("HTTP API (gin)"))
	spotify := gcp.Network.Dns(diagram.NodeLabel("Spotify Web API"))
	bucket := gcp.Storage.Storage(diagram.NodeLabel("GCS documents"))
	db := gcp.Database.Sql(diagram.NodeLabel("SQLite playlist store"))

	core := diagram.NewGroup("core").Label("Document pipeline").Add(
		programming.Language.Go(diagram.NodeLabel("Normalizer")),
		programming.Language.Go(diagram.NodeLabel("Keyword Filter")),
		programming.Language.Go(diagram.NodeLabel("Statistics")),
		programming.Language.Go(diagram.NodeLabel("Codec")),
	)

	d.Connect(user, cli, diagram.Forward()).
		Connect(user, api, diagram.Forward()).
		Connect(cli, spotify, diagram.Forward()).
		Connect(api, spotify, diagram.Forward()).
		Connect(cli, bucket, diagram.Forward()).
		Connect(cli, db, diagram.Forward()).
		Connect(api, db, diagram.Forward()).
		Group(core)

	if err := d.Render(); err != nil {
		log.WithError(err).Fatal("Failed to render architecture diagram")
	}
}

// generateComponentDiagram shows the internal packages and their dependencies.
func generateComponentDiagram() {
	d, err := diagram.New(
		diagram.Filename("components"),
		diagram.Label("precureplaylist Components"),
		diagram.Direction("TB"),
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create component diagram")
	}

	cmd := programming.Language.Go(diagram.NodeLabel("cmd/precureplaylist"))
	server := programming.Language.Go(diagram.NodeLabel("internal/server"))
	service := programming.Language.Go(diagram.NodeLabel("internal/playlist"))
	codec := programming.Language.Go(diagram.NodeLabel("internal/codec"))
	normalize := programming.Language.Go(diagram.NodeLabel("internal/normalize"))
	keyword := programming.Language.Go(diagram.NodeLabel("internal/keyword"))
	stats := programming.Language.Go(diagram.NodeLabel("internal/stats"))
	series := programming.Language.Go(diagram.NodeLabel("internal/series"))
	spotify := programming.Language.Go(diagram.NodeLabel("internal/spotify"))
	duplicate := programming.Language.Go(diagram.NodeLabel("internal/duplicate"))
	store := programming.Language.Go(diagram.NodeLabel("internal/store"))
	storage := programming.Language.Go(diagram.NodeLabel("internal/storage"))

	d.Connect(cmd, service, diagram.Forward()).
		Connect(cmd, server, diagram.Forward()).
		Connect(cmd, storage, diagram.Forward()).
		Connect(server, service, diagram.Forward()).
		Connect(service, codec, diagram.Forward()).
		Connect(service, spotify, diagram.Forward()).
		Connect(service, duplicate, diagram.Forward()).
		Connect(service, store, diagram.Forward()).
		Connect(codec, normalize, diagram.Forward()).
		Connect(codec, keyword, diagram.Forward()).
		Connect(codec, stats, diagram.Forward()).
		Connect(stats, series, diagram.Forward()).
		Connect(duplicate, spotify, diagram.Forward())

	if err := d.Render(); err != nil {
		log.WithError(err).Fatal("Failed to render component diagram")
	}
}
