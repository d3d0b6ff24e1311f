package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gentletalk/internal/bootstrap"
	"gentletalk/internal/domain/account"
	"gentletalk/internal/errs"
	accountuc "gentletalk/internal/usecase/account"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Sign up and look up users",
}

func writeUser(w io.Writer, u account.User) error {
	_, err := fmt.Fprintf(w, "user=%d name=%s phone=%s\n", u.No, u.Name, dash(u.Phone))
	return errs.Wrap(err, "write user line")
}

var userSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a user and link the issues naming their phone as opponent",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")

		got, err := app.Accounts.Signup(cmd.Context(), accountuc.SignupInput{Name: name, Phone: phone})
		if err != nil {
			return errs.Wrap(err, "signup")
		}
		if err := writeUser(cmd.OutOrStdout(), got.User); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "linked issues: %v\n", got.LinkedIssues)
		return errs.Wrap(err, "write signup output")
	}),
}

var userGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a user by number or phone",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		phone, _ := cmd.Flags().GetString("phone")
		userNo, _ := cmd.Flags().GetInt64("user")

		var (
			u   account.User
			err error
		)
		if phone != "" {
			u, err = app.Accounts.FindByPhone(cmd.Context(), phone)
		} else {
			u, err = app.Accounts.Get(cmd.Context(), userNo)
		}
		if err != nil {
			return errs.Wrap(err, "get user")
		}
		return writeUser(cmd.OutOrStdout(), u)
	}),
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userSignupCmd, userGetCmd)

	userSignupCmd.Flags().String("name", "", "Display name")
	userSignupCmd.Flags().String("phone", "", "Phone number")
	_ = userSignupCmd.MarkFlagRequired("name")

	userGetCmd.Flags().Int64("user", 0, "User number")
	userGetCmd.Flags().String("phone", "", "Phone number")
}
