package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the Umbra node",
			Value: "~/.umbra",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "JSON configuration file overriding the defaults",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN for error reporting (disabled when empty)",
		},
	}
}

// StorageFlags covers the genesis store database knobs.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the database cache",
			Value: 1024,
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Number of file handles available to the database",
			Value: 512,
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Resource preset (lite|default|full|archive)",
			Value: "default",
		},
	}
}
