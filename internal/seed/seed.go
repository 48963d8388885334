// Package seed loads accounts and reservations from a YAML file into the
// stores, for bootstrapping persistent backends.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
)

type Account struct {
	UserName string `yaml:"userName"`
	Password string `yaml:"password"`
}

type Reservation struct {
	Room      string `yaml:"room"`
	User      string `yaml:"user"`
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
}

type File struct {
	Accounts     []Account     `yaml:"accounts"`
	Reservations []Reservation `yaml:"reservations"`
}

// Registrar is implemented by auth.Authorizer.
type Registrar interface {
	RegisterUser(ctx context.Context, acc models.Account) (string, error)
}

// Creator is implemented by repository.ReservationStore.
type Creator interface {
	Create(ctx context.Context, r models.Reservation) (string, error)
}

// Load reads path. Unknown keys are rejected.
func Load(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Report counts what Apply did.
type Report struct {
	Accounts     int
	Reservations int
	Skipped      int
	Failed       int
}

// Apply registers every complete account and creates every complete reservation,
// writing one line per entry to out. Incomplete entries are skipped; failures
// are counted and the run continues.
func Apply(ctx context.Context, f File, reg Registrar, res Creator, out io.Writer) Report {
	var rep Report
	for _, a := range f.Accounts {
		name := strings.TrimSpace(a.UserName)
		if name == "" || a.Password == "" {
			fmt.Fprintf(out, "Skipping incomplete account: %q\n", a.UserName)
			rep.Skipped++
			continue
		}
		id, err := reg.RegisterUser(ctx, models.Account{UserName: name, Password: a.Password})
		if err != nil {
			fmt.Fprintf(out, "Failed to add account %s: %v\n", name, err)
			rep.Failed++
			continue
		}
		fmt.Fprintf(out, "Added account %s (%s)\n", name, id)
		rep.Accounts++
	}

	for _, r := range f.Reservations {
		if r.Room == "" || r.User == "" || r.StartDate == "" || r.EndDate == "" {
			fmt.Fprintf(out, "Skipping incomplete reservation: %+v\n", r)
			rep.Skipped++
			continue
		}
		id, err := res.Create(ctx, models.Reservation{Room: r.Room, User: r.User, StartDate: r.StartDate, EndDate: r.EndDate})
		if err != nil {
			fmt.Fprintf(out, "Failed to add reservation for %s: %v\n", r.Room, err)
			rep.Failed++
			continue
		}
		fmt.Fprintf(out, "Added reservation %s (%s, %s..%s)\n", id, r.Room, r.StartDate, r.EndDate)
		rep.Reservations++
	}
	return rep
}
