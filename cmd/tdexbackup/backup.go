package main

import (
	"time"

	"github.com/tdex-network/tdex-backup/internal/config"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var backupwallet = cli.Command{
	Name:  "backup",
	Usage: "back up the seed phrase or the private key of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address of the account to back up",
			Required: true,
		},
	},
	Action: backupAction,
}

var history = cli.Command{
	Name:  "history",
	Usage: "list completed backups",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "address",
			Usage: "list only the backups of this account",
		},
	},
	Action: historyAction,
}

var status = cli.Command{
	Name:  "status",
	Usage: "tell whether an account has ever been backed up",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address of the account",
			Required: true,
		},
	},
	Action: statusAction,
}

type backupInfo struct {
	Id          string `json:"id"`
	Address     string `json:"address"`
	Method      string `json:"method"`
	Shared      bool   `json:"shared"`
	Elevated    bool   `json:"elevated"`
	CompletedAt string `json:"completed_at"`
}

func newBackupInfo(r domain.BackupRecord) backupInfo {
	return backupInfo{
		Id:          r.Id,
		Address:     r.Address,
		Method:      string(r.Method),
		Shared:      r.Shared,
		Elevated:    r.Elevated,
		CompletedAt: time.Unix(r.CompletedAt, 0).Format(time.RFC3339),
	}
}

func backupAction(ctx *cli.Context) error {
	appConfig, term, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	svc, err := appConfig.BackupService()
	if err != nil {
		return err
	}

	address := ctx.String("address")
	term.Println("Starting backup of", address)

	outcome, err := svc.Backup(ctx.Context, address)
	if err != nil {
		return err
	}

	if !outcome.Success {
		if outcome.IsCancelled() {
			printJSON(map[string]string{"result": "cancelled"})
			return nil
		}
		return outcome.Reason
	}

	// The success message is shown by the terminal after a delay.
	time.Sleep(config.GetSuccessOverlayDelay() + 50*time.Millisecond)

	resp := map[string]interface{}{"result": "completed"}
	if st, err := svc.BackupStatus(ctx.Context, address); err == nil &&
		st.LastBackup != nil {
		resp["backup"] = newBackupInfo(*st.LastBackup)
	}
	printJSON(resp)
	return nil
}

func historyAction(ctx *cli.Context) error {
	appConfig, _, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	svc, err := appConfig.BackupService()
	if err != nil {
		return err
	}

	var records []domain.BackupRecord
	if address := ctx.String("address"); address != "" {
		records, err = svc.ListBackupsForAddress(ctx.Context, address)
	} else {
		records, err = svc.ListBackups(ctx.Context)
	}
	if err != nil {
		return err
	}

	resp := make([]backupInfo, 0, len(records))
	for _, r := range records {
		resp = append(resp, newBackupInfo(r))
	}
	printJSON(resp)
	return nil
}

func statusAction(ctx *cli.Context) error {
	appConfig, _, cleanup := newAppConfig(ctx.Context)
	defer cleanup()

	svc, err := appConfig.BackupService()
	if err != nil {
		return err
	}

	st, err := svc.BackupStatus(ctx.Context, ctx.String("address"))
	if err != nil {
		return err
	}

	resp := map[string]interface{}{
		"address":   st.Wallet.Address,
		"origin":    st.Wallet.Origin.String(),
		"protected": st.Protected,
		"backed_up": st.IsBackedUp(),
	}
	if st.LastBackup != nil {
		resp["last_backup"] = newBackupInfo(*st.LastBackup)
	}
	printJSON(resp)
	return nil
}
