package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/greenloop/ewaste-registry-backend/api/clients"
	"github.com/greenloop/ewaste-registry-backend/cmd/flags"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/urfave/cli/v2"
)

func registryClient(cCtx *cli.Context) *clients.RegistryClient {
	return &clients.RegistryClient{ServerAddr: cCtx.String(flags.RegistryServerFlag.Name)}
}

func callerIdentity(cCtx *cli.Context) (interfaces.Identity, error) {
	raw := cCtx.String(flags.IdentityFlag.Name)
	if raw == "" {
		return interfaces.Identity{}, errors.New("identity is required")
	}
	return interfaces.NewIdentityFromHex(raw)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	app := &cli.App{
		Name:  "registry-admin",
		Usage: "Administer a running device lifecycle registry",
		Commands: []*cli.Command{
			{
				Name:      "grant-role",
				Usage:     "Grant a role to an identity",
				ArgsUsage: "<role> <identity>",
				Flags:     []cli.Flag{flags.RegistryServerFlag, flags.IdentityFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return errors.New("expected arguments: <role> <identity>")
					}

					role, err := interfaces.ParseRole(cCtx.Args().Get(0))
					if err != nil {
						return err
					}
					grantee, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(1))
					if err != nil {
						return err
					}
					caller, err := callerIdentity(cCtx)
					if err != nil {
						return err
					}

					if err := registryClient(cCtx).GrantRole(caller, grantee, role); err != nil {
						return err
					}
					fmt.Printf("granted %s to %s\n", role, grantee)
					return nil
				},
			},
			{
				Name:      "has-role",
				Usage:     "Check whether an identity holds a role",
				ArgsUsage: "<role> <identity>",
				Flags:     []cli.Flag{flags.RegistryServerFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return errors.New("expected arguments: <role> <identity>")
					}

					role, err := interfaces.ParseRole(cCtx.Args().Get(0))
					if err != nil {
						return err
					}
					identity, err := interfaces.NewIdentityFromHex(cCtx.Args().Get(1))
					if err != nil {
						return err
					}

					hasRole, err := registryClient(cCtx).HasRole(identity, role)
					if err != nil {
						return err
					}
					fmt.Println(hasRole)
					return nil
				},
			},
			{
				Name:      "device",
				Usage:     "Fetch a device record",
				ArgsUsage: "<uid>",
				Flags:     []cli.Flag{flags.RegistryServerFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected argument: <uid>")
					}

					device, err := registryClient(cCtx).GetDevice(interfaces.DeviceUID(cCtx.Args().Get(0)))
					if err != nil {
						return err
					}
					return printJSON(device)
				},
			},
			{
				Name:      "history",
				Usage:     "Fetch a device's custody history",
				ArgsUsage: "<uid>",
				Flags:     []cli.Flag{flags.RegistryServerFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected argument: <uid>")
					}

					hops, err := registryClient(cCtx).GetHistory(interfaces.DeviceUID(cCtx.Args().Get(0)))
					if err != nil {
						return err
					}
					return printJSON(hops)
				},
			},
			{
				Name:      "archive",
				Usage:     "Snapshot a device record into the archive backends",
				ArgsUsage: "<uid>",
				Flags:     []cli.Flag{flags.RegistryServerFlag, flags.IdentityFlag},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected argument: <uid>")
					}
					caller, err := callerIdentity(cCtx)
					if err != nil {
						return err
					}

					archive, err := registryClient(cCtx).ArchiveDevice(caller, interfaces.DeviceUID(cCtx.Args().Get(0)))
					if err != nil {
						return err
					}
					return printJSON(archive)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
