// Package admin implements the operator commands: creating users, resetting
// a password and applying migrations.
package admin

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
)

// passwordAttempts bounds how often a password prompt is repeated.
const passwordAttempts = 3

var ErrUnknownCommand = errors.New("unknown command")

// Commands in the order they are listed by help.
var Commands = []string{"createuser", "changepassword", "migrate", "help"}

type UserAdmin interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	SetPassword(ctx context.Context, username, password string) error
}

// Migrator applies migrations and reports the resulting schema version.
type Migrator interface {
	Migrate(ctx context.Context) (int64, error)
}

type App struct {
	users    UserAdmin
	migrator Migrator
	reader   *bufio.Reader
	out      io.Writer
}

func New(users UserAdmin, migrator Migrator, in io.Reader, out io.Writer) *App {
	return &App{
		users:    users,
		migrator: migrator,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// SplitCommand finds the first known command in args and returns it with
// the arguments that follow it. Everything before it belongs to the config
// flags.
func SplitCommand(args []string) (string, []string) {
	for i, a := range args {
		for _, c := range Commands {
			if a == c {
				return c, args[i+1:]
			}
		}
	}
	return "", nil
}

// Run executes one command.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "createuser":
		return a.createUser(ctx, args)
	case "changepassword":
		return a.changePassword(ctx, args)
	case "migrate":
		return a.migrate(ctx)
	case "", "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: admin [config flags] <command> [args]")
	fmt.Fprintln(a.out, "  createuser [-username name] [-email address]")
	fmt.Fprintln(a.out, "  changepassword <username>")
	fmt.Fprintln(a.out, "  migrate")
}

func (a *App) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = getText(a.reader, "Username: ", a.out); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = getText(a.reader, "Email address: ", a.out); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		password, err := a.newPassword()
		if err != nil {
			return err
		}

		_, err = a.users.Register(ctx, services.RegisterInput{
			Username: *username,
			Email:    *email,
			Password: password,
		})
		if err == nil {
			fmt.Fprintln(a.out, "User created successfully.")
			return nil
		}

		var verr *common.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		a.printValidation(verr)
		if _, onlyPassword := verr.Fields["password"]; !onlyPassword || len(verr.Fields) > 1 || attempt >= passwordAttempts {
			return err
		}
	}
}

func (a *App) changePassword(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("changepassword takes exactly one username")
	}
	username := args[0]

	fmt.Fprintf(a.out, "Changing password for user '%s'\n", username)

	for attempt := 1; ; attempt++ {
		password, err := a.newPassword()
		if err != nil {
			return err
		}

		err = a.users.SetPassword(ctx, username, password)
		if err == nil {
			fmt.Fprintf(a.out, "Password changed successfully for user '%s'\n", username)
			return nil
		}
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user '%s' does not exist", username)
		}

		var verr *common.ValidationError
		if !errors.As(err, &verr) || attempt >= passwordAttempts {
			return err
		}
		a.printValidation(verr)
	}
}

func (a *App) migrate(ctx context.Context) error {
	v, err := a.migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Schema is at version %d\n", v)
	return nil
}

// newPassword prompts twice until both entries match.
func (a *App) newPassword() (string, error) {
	for attempt := 1; ; attempt++ {
		p1, err := getPassword("Password: ", a.out)
		if err != nil {
			return "", err
		}
		p2, err := getPassword("Password (again): ", a.out)
		if err != nil {
			return "", err
		}
		if p1 == p2 && p1 != "" {
			return p1, nil
		}

		if p1 == "" {
			fmt.Fprintln(a.out, "Error: Blank passwords aren't allowed.")
		} else {
			fmt.Fprintln(a.out, "Error: Your passwords didn't match.")
		}
		if attempt >= passwordAttempts {
			return "", errors.New("too many failed attempts")
		}
	}
}

func (a *App) printValidation(verr *common.ValidationError) {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		fmt.Fprintf(a.out, "Error (%s): %s\n", f, strings.Join(verr.Fields[f], " "))
	}
}
