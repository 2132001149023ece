package main

import (
	"fmt"
	"strings"

	"github.com/tdex-network/tdex-backup/internal/interfaces/terminal"
	"github.com/tdex-network/tdex-backup/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var createhd = cli.Command{
	Name:   "create-hd",
	Usage:  "create a new HD wallet and print its seed phrase",
	Action: createHDAction,
}

var importkey = cli.Command{
	Name:  "import-key",
	Usage: "import the hex encoded private key of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Usage: "the private key to import, asked interactively if omitted",
		},
	},
	Action: importKeyAction,
}

var importseed = cli.Command{
	Name:  "import-seed",
	Usage: "restore an HD wallet from its seed phrase",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "mnemonic",
			Usage: "the space separated seed phrase, asked interactively if omitted",
		},
	},
	Action: importSeedAction,
}

var watch = cli.Command{
	Name:  "watch",
	Usage: "add a watch-only address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address to watch",
			Required: true,
		},
	},
	Action: watchAction,
}

var list = cli.Command{
	Name:   "list",
	Usage:  "list all wallet accounts",
	Action: listAction,
}

func createHDAction(ctx *cli.Context) error {
	appConfig, term, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	if err := appConfig.Validate(); err != nil {
		return err
	}

	password, err := newPassword(ctx, term)
	if err != nil {
		return err
	}

	address, mnemonic, err := appConfig.KeyManager().CreateHDWallet(
		ctx.Context, password,
	)
	if err != nil {
		return err
	}

	printJSON(map[string]string{
		"address":  address,
		"mnemonic": strings.Join(mnemonic, " "),
	})
	return nil
}

func importKeyAction(ctx *cli.Context) error {
	appConfig, term, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	if err := appConfig.Validate(); err != nil {
		return err
	}

	key := ctx.String("key")
	if key == "" {
		var err error
		if key, err = term.Authenticate(ctx.Context, "Private key"); err != nil {
			return err
		}
	}
	password, err := newPassword(ctx, term)
	if err != nil {
		return err
	}

	address, err := appConfig.KeyManager().ImportPrivateKey(
		ctx.Context, key, password,
	)
	if err != nil {
		return err
	}

	printJSON(map[string]string{"address": address})
	return nil
}

func importSeedAction(ctx *cli.Context) error {
	appConfig, term, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	if err := appConfig.Validate(); err != nil {
		return err
	}

	mnemonic := ctx.String("mnemonic")
	if mnemonic == "" {
		var err error
		if mnemonic, err = term.Authenticate(ctx.Context, "Seed phrase"); err != nil {
			return err
		}
	}
	password, err := newPassword(ctx, term)
	if err != nil {
		return err
	}

	address, err := appConfig.KeyManager().ImportMnemonic(
		ctx.Context, wallet.ParseMnemonic(mnemonic), password,
	)
	if err != nil {
		return err
	}

	printJSON(map[string]string{"address": address})
	return nil
}

func watchAction(ctx *cli.Context) error {
	appConfig, _, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	if err := appConfig.Validate(); err != nil {
		return err
	}

	address, err := appConfig.KeyManager().AddWatchAddress(
		ctx.Context, ctx.String("address"),
	)
	if err != nil {
		return err
	}

	printJSON(map[string]string{"address": address})
	return nil
}

func listAction(ctx *cli.Context) error {
	appConfig, _, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	if err := appConfig.Validate(); err != nil {
		return err
	}

	km := appConfig.KeyManager()
	wallets, err := km.ListWallets(ctx.Context)
	if err != nil {
		return err
	}

	type walletInfo struct {
		Address   string `json:"address"`
		Origin    string `json:"origin"`
		Protected bool   `json:"protected"`
	}
	resp := make([]walletInfo, 0, len(wallets))
	for _, w := range wallets {
		resp = append(resp, walletInfo{
			Address:   w.Address,
			Origin:    w.Origin.String(),
			Protected: km.IsProtectedByUserPresenceLock(w.Address),
		})
	}

	printJSON(resp)
	return nil
}

// newPassword asks a new wallet password twice.
func newPassword(ctx *cli.Context, term *terminal.Terminal) (string, error) {
	password, err := term.Authenticate(ctx.Context, "New wallet password")
	if err != nil {
		return "", err
	}
	confirm, err := term.Authenticate(ctx.Context, "Confirm password")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
