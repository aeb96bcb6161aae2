package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/seed"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type userUpserter interface {
	UpsertByEmail(ctx context.Context, u *models.User) (bool, error)
}

// backend is what the database-bound commands need. It is opened lazily so
// that hash-password works without a database.
type backend struct {
	users   userUpserter
	migrate func(ctx context.Context) ([]string, error)
	seed    func(ctx context.Context) (*seed.Result, error)
}

type commandLine struct {
	out     io.Writer
	connect func(ctx context.Context) (*backend, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  create-admin -email EMAIL [-name NAME] - create or reset an administrator; the password is prompted")
	fmt.Fprintln(cli.out, "  hash-password                         - print the bcrypt hash of a prompted password")
	fmt.Fprintln(cli.out, "  migrate                               - apply pending database migrations")
	fmt.Fprintln(cli.out, "  seed                                  - insert the demo accounts and catalog")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminEmail := createAdminCmd.String("email", "", "The administrator's email.")
	createAdminName := createAdminCmd.String("name", "Администратор", "The administrator's display name.")

	switch args[1] {
	case "create-admin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*createAdminEmail) == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(ctx, *createAdminEmail, *createAdminName, pwd)
	case "hash-password":
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			return errHelp
		}
		return cli.hashPassword(pwd)
	case "migrate":
		return cli.migrate(ctx)
	case "seed":
		return cli.seed(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) createAdmin(ctx context.Context, email, name, password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	b, err := cli.connect(ctx)
	if err != nil {
		return err
	}
	u := &models.User{Email: email, Name: name, Password: hash, Role: models.RoleAdmin}
	created, err := b.users.UpsertByEmail(ctx, u)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cli.out, "Administrator %s created (id %s)\n", u.Email, u.ID)
	} else {
		fmt.Fprintf(cli.out, "Administrator %s updated (id %s)\n", u.Email, u.ID)
	}
	return nil
}

func (cli *commandLine) hashPassword(password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(hash, password) {
		return errors.New("generated hash does not verify")
	}
	fmt.Fprintln(cli.out, hash)
	return nil
}

func (cli *commandLine) migrate(ctx context.Context) error {
	b, err := cli.connect(ctx)
	if err != nil {
		return err
	}
	applied, err := b.migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cli.out, "No pending migrations")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cli.out, "Applied %s\n", v)
	}
	return nil
}

func (cli *commandLine) seed(ctx context.Context) error {
	b, err := cli.connect(ctx)
	if err != nil {
		return err
	}
	res, err := b.seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Seeded %d users, %d institutions, %d programs\n", res.Users, res.Institutions, res.Programs)
	return nil
}
