package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/auth"
)

var (
	userEmail    string
	userName     string
	userPassword string
	userGroup    string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: `Create an account in any access group, including Server Admin, which the
API never grants.

Examples:
  catalogctl create-user --email ops@example.com --name Ops --password s3cret-pass --group server_admin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := model.ParseGroup(userGroup)
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return errors.Wrap(err, "password")
		}
		user, err := model.NewUser(userName, userEmail, hash, group)
		if err != nil {
			return err
		}

		store, _, log, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo := repository.New(store, log)
		if err := repo.AddUser(cmd.Context(), user); err != nil {
			return err
		}
		green.Printf("✓ Created %s (%s)\n", user.Email, group)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "account email")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password (at least 8 characters)")
	createUserCmd.Flags().StringVar(&userGroup, "group", "member", "member, admin or server_admin")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("password")
}
