package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GenesisFlags covers genesis snapshot input/output options.
func GenesisFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "genesis",
			Usage: "Path to the genesis snapshot (JSON text form or canonical binary form)",
		},
		cli.StringFlag{
			Name:  "genesis.out",
			Usage: "Output path for generated or re-encoded snapshots",
		},
		cli.StringFlag{
			Name:  "nonce.scope",
			Usage: "Message nonce uniqueness scope (per-sender|global)",
		},
	}
}

// FakeNetFlags covers the deterministic fixture generator used by local
// networks and benchmarks.
func FakeNetFlags() []cli.Flag {
	return []cli.Flag{
		cli.Int64Flag{
			Name:  "fake.seed",
			Usage: "Seed of the deterministic fixture generator",
			Value: 1,
		},
		cli.IntFlag{
			Name:  "fake.validators",
			Usage: "Number of fake authorities",
			Value: 3,
		},
		cli.IntFlag{
			Name:  "fake.coins",
			Usage: "Number of fake coins",
			Value: 10,
		},
		cli.IntFlag{
			Name:  "fake.contracts",
			Usage: "Number of fake contracts",
			Value: 3,
		},
		cli.IntFlag{
			Name:  "fake.messages",
			Usage: "Number of fake bridge messages",
			Value: 5,
		},
	}
}
