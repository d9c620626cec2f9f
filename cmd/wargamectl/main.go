// Command wargamectl is the operator CLI for the turn-resolution engine:
// guild config import/export, order submission, and turn advance,
// against a postgres, sqlite, or in-memory store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "wargamectl",
		Short: "Operate a wargame turn-resolution engine instance",
	}

	root.PersistentFlags().StringVar(&storeKind, "store", "memory", "backing store: postgres|sqlite|memory")
	root.PersistentFlags().StringVar(&storeDSN, "dsn", "", "postgres connection string (when --store=postgres)")
	root.PersistentFlags().StringVar(&sqlitePath, "db-path", "wargame.db", "sqlite database file (when --store=sqlite)")
	root.PersistentFlags().Int64Var(&guildID, "guild", 0, "tenant guild id")
	root.PersistentFlags().StringVar(&redisAddr, "redis", "", "redis address for the turn lock (optional; unset disables distributed locking)")

	root.AddCommand(configCmd())
	root.AddCommand(orderCmd())
	root.AddCommand(turnCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
