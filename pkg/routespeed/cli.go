package routespeed

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/config"
	"github.com/travigo/routespeed/pkg/crs"
	"github.com/travigo/routespeed/pkg/metrics"
	"github.com/urfave/cli/v2"
)

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "GTFS zip path or URL",
		},
		&cli.StringFlag{
			Name:  "shape",
			Usage: "Shape ID to analyse",
		},
		&cli.StringFlag{
			Name:  "route",
			Usage: "Route ID to analyse, using its most common shape",
		},
		&cli.StringFlag{
			Name:  "trip-filter",
			Usage: "Expression trips must match, eg. 'DirectionID == 0'",
		},
		&cli.IntFlag{
			Name:  "epsg",
			Usage: "EPSG code of the projected system used for distances",
		},
		&cli.BoolFlag{
			Name:  "strict-projection",
			Usage: "Fail when the route lies outside the projection's area of use",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Trips processed concurrently (default GOMAXPROCS)",
		},
		&cli.StringFlag{
			Name:  "redis-address",
			Usage: "Cache downloaded feeds in this Redis server",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "csv", Usage: "Write the time series to this CSV file"},
		&cli.StringFlag{Name: "json", Usage: "Write the result to this JSON file"},
		&cli.StringSliceFlag{Name: "json-groups", Usage: "Field groups in the JSON output (basic, detailed)"},
		&cli.StringFlag{Name: "geojson", Usage: "Write segments and stops to this GeoJSON file"},
		&cli.StringFlag{Name: "sqlite", Usage: "Write the result to this SQLite database"},
		&cli.StringFlag{Name: "mongodb-uri", Usage: "Upsert observations into this MongoDB"},
		&cli.StringFlag{Name: "nats-url", Usage: "Publish per trip messages to this NATS server"},
		&cli.StringFlag{Name: "elasticsearch-address", Usage: "Index observations into this Elasticsearch cluster"},
		&cli.StringFlag{Name: "queue-redis-address", Usage: "Queue per trip messages on this Redis server"},
		&cli.StringFlag{Name: "neo4j-uri", Usage: "Write stops and segment speeds to this Neo4j graph"},
		&cli.StringFlag{Name: "metrics-textfile", Usage: "Save run metrics in Prometheus text format"},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	err = cfg.Apply(config.Overrides{
		Source:           c.String("source"),
		ShapeID:          c.String("shape"),
		RouteID:          c.String("route"),
		TripFilter:       c.String("trip-filter"),
		EPSG:             c.Int("epsg"),
		StrictProjection: c.Bool("strict-projection"),
		Workers:          c.Int("workers"),
		Outputs: config.OutputConfig{
			CSV:        c.String("csv"),
			JSON:       c.String("json"),
			JSONGroups: c.StringSlice("json-groups"),
			GeoJSON:    c.String("geojson"),
			SQLite:     c.String("sqlite"),
			MongoURI:   c.String("mongodb-uri"),
			NATSURL:    c.String("nats-url"),

			ElasticsearchAddress: c.String("elasticsearch-address"),
			QueueRedisAddress:    c.String("queue-redis-address"),
			Neo4jURI:             c.String("neo4j-uri"),
		},
	})
	if err != nil {
		return nil, err
	}

	if address := c.String("redis-address"); address != "" {
		cfg.Cache.RedisAddress = address
	}
	if textfile := c.String("metrics-textfile"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}

	return cfg, nil
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "Calculate segment speeds for a shape and write them to the configured outputs",
			Flags: append(selectionFlags(), outputFlags()...),
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}

				ctx, cancel := signalContext(c)
				defer cancel()

				result, err := Execute(ctx, cfg)
				if result != nil {
					log.Info().
						Str("shape", result.ShapeID).
						Int("segments", len(result.Segments)).
						Int("observations", len(result.Observations)).
						Int("flagged", result.FlaggedCount()).
						Int("skipped", result.Skipped).
						Int("rows", len(result.Rows)).
						Msg("Segment speeds complete")
				}
				return err
			},
		},
		{
			Name:  "inspect",
			Usage: "Run the pipeline and print a summary without writing any outputs",
			Flags: selectionFlags(),
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}

				ctx, cancel := signalContext(c)
				defer cancel()

				result, err := Analyse(ctx, cfg, metrics.NewCollector())
				if err != nil {
					return err
				}

				pretty.Fprintf(c.App.Writer, "%# v\n", Summarise(result))
				return nil
			},
		},
		{
			Name:  "shapes",
			Usage: "List the shapes in a feed with their route and trip counts",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config", Usage: "YAML config file"},
				&cli.StringFlag{Name: "source", Usage: "GTFS zip path or URL"},
				&cli.StringFlag{Name: "redis-address", Usage: "Cache downloaded feeds in this Redis server"},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				if cfg.Source == "" {
					return fmt.Errorf("a GTFS source is required")
				}

				ctx, cancel := signalContext(c)
				defer cancel()

				schedule, err := loadSchedule(ctx, cfg)
				if err != nil {
					return err
				}

				writer := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "SHAPE\tROUTE\tTRIPS\tPOINTS")
				for _, summary := range schedule.ShapeSummaries() {
					fmt.Fprintf(writer, "%s\t%s\t%d\t%d\n", summary.ShapeID, summary.RouteID, summary.Trips, summary.Points)
				}
				return writer.Flush()
			},
		},
		{
			Name:  "projections",
			Usage: "List the projected coordinate systems distances can be measured in",
			Action: func(c *cli.Context) error {
				writer := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "EPSG\tNAME\tUNIT")
				for _, system := range crs.Systems() {
					marker := ""
					if system.EPSG == crs.DefaultEPSG {
						marker = " (default)"
					}
					fmt.Fprintf(writer, "%d\t%s%s\t%s\n", system.EPSG, system.Name, marker, system.Unit.Name)
				}
				return writer.Flush()
			},
		},
	}
}
