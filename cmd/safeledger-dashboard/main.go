package main

import (
	"os"

	"github.com/safeledger/dashboard/internal/commands"
)

// @title                       SafeLedger Dashboard API
// @version                     1.0
// @description                 Backend for the SafeLedger dashboard. Proxies the ledger backend and renders dashboard views.
// @BasePath                    /
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        sl_session
func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
