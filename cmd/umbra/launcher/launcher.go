package launcher

import (
	"gopkg.in/urfave/cli.v1"

	"github.com/umbra-chain/go-umbra/flags"
)

var app = flags.NewApp()

func init() {
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Commands = []cli.Command{
		{
			Name:      "check",
			Usage:     "Validate a genesis snapshot and report every violation",
			ArgsUsage: "",
			Flags:     flags.GenesisFlags(),
			Action:    checkGenesis,
		},
		{
			Name:   "hash",
			Usage:  "Print the commitment hash of a genesis snapshot",
			Flags:  flags.GenesisFlags(),
			Action: hashGenesis,
		},
		{
			Name:   "commit",
			Usage:  "Validate a genesis snapshot and commit it to the local store",
			Flags:  append(flags.GenesisFlags(), flags.StorageFlags()...),
			Action: commitGenesis,
		},
		{
			Name:   "fake",
			Usage:  "Generate a deterministic fake-network genesis snapshot",
			Flags:  append(flags.GenesisFlags(), flags.FakeNetFlags()...),
			Action: fakeGenesis,
		},
	}
}

// Launch runs the umbra CLI with the given arguments.
func Launch(args []string) error {
	return app.Run(args)
}
