// The seeder populates a running registry with a demo dataset: one
// identity per role, ten devices, and two fully driven routes. Useful
// for local development and UI work against a fresh registry.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/greenloop/ewaste-registry-backend/api/clients"
	"github.com/greenloop/ewaste-registry-backend/cmd/flags"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/urfave/cli/v2"
)

var identityFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "admin",
		Required: true,
		Usage:    "admin identity, must match the registry's seed admin. 40-char hex address",
	},
	&cli.StringFlag{
		Name:     "user",
		Required: true,
		Usage:    "identity to grant the User role",
	},
	&cli.StringFlag{
		Name:     "green-point",
		Required: true,
		Usage:    "identity to grant the GreenPoint role",
	},
	&cli.StringFlag{
		Name:     "carrier",
		Required: true,
		Usage:    "identity to grant the Carrier role",
	},
	&cli.StringFlag{
		Name:     "recycler",
		Required: true,
		Usage:    "identity to grant the Recycler role",
	},
	&cli.StringFlag{
		Name:     "inspector",
		Required: true,
		Usage:    "identity to grant the Inspector role",
	},
}

func identityArg(cCtx *cli.Context, name string) (interfaces.Identity, error) {
	identity, err := interfaces.NewIdentityFromHex(cCtx.String(name))
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("invalid %s identity: %w", name, err)
	}
	return identity, nil
}

func main() {
	app := &cli.App{
		Name:  "registry-seeder",
		Usage: "Seed a running registry with demo roles, devices, and routes",
		Flags: append(append([]cli.Flag{flags.RegistryServerFlag}, identityFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			client := &clients.RegistryClient{ServerAddr: cCtx.String(flags.RegistryServerFlag.Name)}

			var ids seedIdentities
			for name, target := range map[string]*interfaces.Identity{
				"admin":       &ids.Admin,
				"user":        &ids.User,
				"green-point": &ids.GreenPoint,
				"carrier":     &ids.Carrier,
				"recycler":    &ids.Recycler,
				"inspector":   &ids.Inspector,
			} {
				identity, err := identityArg(cCtx, name)
				if err != nil {
					return err
				}
				*target = identity
			}

			return seed(client, ids, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
