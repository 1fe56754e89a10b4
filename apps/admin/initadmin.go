package main

import (
	"context"
	"fmt"
)

// initAdmin seeds the bootstrap administrator account. Running it twice is
// harmless: the existing login is reported instead of recreated.
func (cli *commandLine) initAdmin() error {
	login, err := cli.usrSvc.InitAdmin(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("administrator login ready: %s (id %d)\n", login.Username, login.ID)
	return nil
}
