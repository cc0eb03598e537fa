package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/greenloop/ewaste-registry-backend/cmd/flags"
	"github.com/greenloop/ewaste-registry-backend/httpserver"
	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/greenloop/ewaste-registry-backend/registry"
	"github.com/greenloop/ewaste-registry-backend/storage"
	"github.com/urfave/cli/v2"
)

var serverFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "backend",
		Value: "memory",
		Usage: "registry backend to serve: 'memory' or 'onchain'",
	},
	&cli.StringFlag{
		Name:  "admin-identity",
		Usage: "identity granted the Admin role at startup (memory backend). 40-char hex address",
	},
	&cli.StringFlag{
		Name:  "private-key",
		Usage: "hex private key for signing registry transactions (onchain backend)",
	},
	&cli.StringSliceFlag{
		Name:  "storage",
		Usage: "archive storage location URI (file://, s3://, ipfs://, vault://), repeatable",
	},
	flags.RpcAddrFlag,
	flags.RegistryContractFlag,
}

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the device lifecycle registry API",
		Flags: append(serverFlags, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String("listen-addr"))

			var reg interfaces.DeviceRegistry
			switch backend := cCtx.String("backend"); backend {
			case "memory":
				adminHex := cCtx.String("admin-identity")
				if adminHex == "" {
					return errors.New("admin-identity is required for the memory backend")
				}
				admin, err := interfaces.NewIdentityFromHex(adminHex)
				if err != nil {
					return err
				}
				logger.Info("Using in-memory registry", "admin", admin.String())
				reg = registry.NewLedger(admin, nil)

			case "onchain":
				contractHex := cCtx.String(flags.RegistryContractFlag.Name)
				if contractHex == "" {
					return errors.New("registry-contract is required for the onchain backend")
				}
				rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)

				logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
				ethClient, err := ethclient.Dial(rpcAddress)
				if err != nil {
					logger.Error("Failed to dial RPC", "err", err)
					return err
				}

				var auth *bind.TransactOpts
				if privateKey := cCtx.String("private-key"); privateKey != "" {
					key, err := crypto.HexToECDSA(privateKey)
					if err != nil {
						return err
					}
					chainID, err := ethClient.ChainID(cCtx.Context)
					if err != nil {
						return err
					}
					auth, err = bind.NewKeyedTransactorWithChainID(key, chainID)
					if err != nil {
						return err
					}
				} else {
					logger.Warn("No private key configured, registry is read-only")
				}

				factory := registry.NewRegistryFactory(ethClient, auth)
				reg, err = factory.RegistryFor(ethcommon.HexToAddress(contractHex))
				if err != nil {
					return err
				}

			default:
				return errors.New("unknown backend: " + backend)
			}

			var archiveStorage interfaces.StorageBackend
			if locations := cCtx.StringSlice("storage"); len(locations) > 0 {
				locationURIs := make([]interfaces.StorageBackendLocation, len(locations))
				for i, loc := range locations {
					locationURIs[i] = interfaces.StorageBackendLocation(loc)
				}

				factory := storage.NewStorageBackendFactory(logger)
				backend, err := factory.CreateMultiBackend(locationURIs)
				if err != nil {
					logger.Error("Failed to create archive storage", "err", err)
					return err
				}
				archiveStorage = backend
				logger.Info("Archive storage configured", "backends", backend.Name())
			} else {
				logger.Warn("No archive storage configured, snapshot archival disabled")
			}

			handler := httpserver.NewHandler(reg, archiveStorage, logger)
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			logger.Info("Shutting down")
			server.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
