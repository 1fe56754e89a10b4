package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/edukia/academia/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc *user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  initadmin - seed the bootstrap administrator account")
	fmt.Println("  adduser -username USERNAME -professor ID -role ID - create a login; the password will be prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The login username.")
	addUserProf := addUserCmd.Int("professor", 0, "The professor id the login belongs to.")
	addUserRole := addUserCmd.Int("role", 0, "The role id to assign.")

	switch args[1] {
	case "initadmin":
		return cli.initAdmin()
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserProf == 0 || *addUserRole == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, string(pwd), *addUserProf, *addUserRole)
	default:
		cli.printUsage()
		return errHelp
	}
}
