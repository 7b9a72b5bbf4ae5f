package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"complaintportal/internal/app/gate"
	"complaintportal/internal/app/identity"
	"complaintportal/internal/pkg/errs"
)

func newLoginCmd(app *cliApp) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session on this machine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			password, err := readPassword(cmd, passwordStdin, false)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				role, err := rt.store.Login(ctx, email, password)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if id := rt.store.Snapshot().Identity; id != nil {
					fmt.Fprintf(out, "Welcome, %s!\n", id.Name)
				}
				fmt.Fprintf(out, "Logged in as %s. Dashboard: %s\n", role, gate.DashboardRoute(role))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newRegisterCmd(app *cliApp) *cobra.Command {
	var (
		name          string
		email         string
		role          string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student or admin account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := identity.ParseRole(role)
			if err != nil {
				return errs.NewError(errs.ErrInvalidRole)
			}
			password, err := readPassword(cmd, passwordStdin, true)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.store.Register(ctx, name, email, password, r); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please login.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(identity.RoleStudent), "account role (student or admin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.store.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAs(cmd, identity.RoleNone, func(ctx context.Context, rt *runtime) error {
				id := rt.store.Snapshot().Identity
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", id.Name, id.Role)
				return nil
			})
		},
	}
}

// readPassword takes the password from the first line of stdin, or prompts on a terminal.
func readPassword(cmd *cobra.Command, fromStdin, confirm bool) (string, error) {
	if fromStdin {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 4096), 64*1024)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("password is empty")
		}
		password := strings.TrimRight(scanner.Text(), "\r\n")
		if password == "" {
			return "", errors.New("password is empty")
		}
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password provided (use --password-stdin or run in a terminal)")
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprint(errOut, "Password: ")
	pass1, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	if len(pass1) == 0 {
		return "", errors.New("password is empty")
	}
	if !confirm {
		return string(pass1), nil
	}

	fmt.Fprint(errOut, "Confirm password: ")
	pass2, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	if string(pass1) != string(pass2) {
		return "", errors.New("passwords do not match")
	}
	return string(pass1), nil
}
