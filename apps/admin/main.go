package main

import (
	"log"
	"os"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/user"
	"github.com/edukia/academia/storage/supabase"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	client := supabase.NewClient(conf.Supabase.URL, conf.Supabase.ServiceKey)
	usrSvc := user.NewService(supabase.NewUserRepository(client), conf.Server.TokenExpirationDelta)

	cli := commandLine{usrSvc: usrSvc}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
