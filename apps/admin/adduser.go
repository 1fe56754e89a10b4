package main

import (
	"context"
	"fmt"

	"github.com/edukia/academia/core/user"
)

// addUser creates a login for an existing professor and assigns its role.
func (cli *commandLine) addUser(uname, pwd string, professorID, roleID int) error {
	ctx := context.Background()

	data := user.NewUser{
		Username:    uname,
		Password:    pwd,
		ProfessorID: professorID,
		RoleID:      roleID,
	}
	id, err := cli.usrSvc.Create(ctx, data)
	if err != nil {
		return err
	}
	fmt.Printf("login %d created for professor %d\n", id, professorID)
	return nil
}
