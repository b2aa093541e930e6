package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/streetlight-service/internal/api/dto"
	"github.com/spec-kit/streetlight-service/internal/client"
	"github.com/spec-kit/streetlight-service/internal/domain"
)

type commandEnv struct {
	out     io.Writer
	server  string
	store   *client.FileStore
	timeout time.Duration
}

func (e *commandEnv) anonymous() *client.Client {
	return client.New(e.server, e.timeout)
}

// signedIn returns a client carrying the stored token.
func (e *commandEnv) signedIn() (*client.Client, *client.Record, error) {
	record, err := e.store.Load()
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, errors.New(`not signed in; run "streetlightctl login" first`)
	}
	server := e.server
	if record.Server != "" {
		server = record.Server
	}
	return client.New(server, e.timeout).WithToken(record.Token), record, nil
}

type command struct {
	summary string
	run     func(env *commandEnv, args []string) error
}

var commandOrder = []string{
	"login", "register", "logout", "whoami",
	"submit", "list", "show",
	"all", "update-status", "stats", "users",
}

var commands = map[string]command{
	"login":         {"sign in with email and password", runLogin},
	"register":      {"create an account and sign in", runRegister},
	"logout":        {"end the current session", runLogout},
	"whoami":        {"show the signed-in account", runWhoami},
	"submit":        {"report a faulty streetlight", runSubmit},
	"list":          {"list your complaints", runList},
	"show":          {"show one complaint", runShow},
	"all":           {"list every complaint (admin)", runAll},
	"update-status": {"change a complaint's status (admin)", runUpdateStatus},
	"stats":         {"count complaints per status (admin)", runStats},
	"users":         {"list accounts with complaint counts (admin)", runUsers},
}

func newFlags(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runLogin(env *commandEnv, args []string) error {
	var email, password string
	fs := newFlags("login", env.out)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}
	session, err := env.anonymous().Login(email, password)
	if err != nil {
		return err
	}
	return env.remember(session)
}

func runRegister(env *commandEnv, args []string) error {
	var name, email, password string
	fs := newFlags("register", env.out)
	fs.StringVar(&name, "name", "", "display name")
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return errors.New("--name, --email and --password are required")
	}
	session, err := env.anonymous().Register(name, email, password)
	if err != nil {
		return err
	}
	return env.remember(session)
}

func (e *commandEnv) remember(session *dto.SessionResponse) error {
	record := &client.Record{
		Server:    e.server,
		User:      session.User,
		Token:     session.Auth.Token,
		ExpiresAt: session.Auth.ExpiresAt,
	}
	if err := e.store.Save(record); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "signed in as %s <%s> (%s)\n", session.User.Name, session.User.Email, session.User.Role)
	return nil
}

func runLogout(env *commandEnv, _ []string) error {
	record, err := env.store.Load()
	if err != nil {
		return err
	}
	if record != nil {
		var apiErr *client.APIError
		err := client.New(record.Server, env.timeout).WithToken(record.Token).Logout()
		if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == 401) {
			return err
		}
	}
	if err := env.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "signed out")
	return nil
}

func runWhoami(env *commandEnv, _ []string) error {
	record, err := env.store.Load()
	if err != nil {
		return err
	}
	if record == nil {
		fmt.Fprintln(env.out, "not signed in")
		return nil
	}
	me, err := client.New(record.Server, env.timeout).WithToken(record.Token).Me()
	if err != nil {
		return err
	}
	if me == nil {
		_ = env.store.Clear()
		fmt.Fprintln(env.out, "session expired; not signed in")
		return nil
	}
	fmt.Fprintf(env.out, "%s <%s> id=%s role=%s\n", me.Name, me.Email, me.ID, me.Role)
	return nil
}

func runSubmit(env *commandEnv, args []string) error {
	var req dto.CreateComplaintRequest
	fs := newFlags("submit", env.out)
	fs.StringVar(&req.Location.Address, "address", "", "street address of the light")
	fs.Float64Var(&req.Location.Coordinates.Lat, "lat", 0, "latitude in degrees")
	fs.Float64Var(&req.Location.Coordinates.Lng, "lng", 0, "longitude in degrees")
	fs.StringVar(&req.Description, "description", "", "what is wrong")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	complaint, err := c.CreateComplaint(req)
	if err != nil {
		return err
	}
	printComplaint(env.out, complaint)
	return nil
}

func listFlags(name string, env *commandEnv, args []string) (client.ListOptions, error) {
	var opts client.ListOptions
	fs := newFlags(name, env.out)
	fs.StringVar(&opts.Status, "status", "", "only this status (pending, in-progress, resolved, rejected)")
	fs.StringVarP(&opts.Query, "query", "q", "", "search address and description")
	err := fs.Parse(args)
	return opts, err
}

func runList(env *commandEnv, args []string) error {
	opts, err := listFlags("list", env, args)
	if err != nil {
		return err
	}
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	items, err := c.ListMine(opts)
	if err != nil {
		return err
	}
	printComplaintTable(env.out, items)
	return nil
}

func runAll(env *commandEnv, args []string) error {
	opts, err := listFlags("all", env, args)
	if err != nil {
		return err
	}
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	items, err := c.ListAll(opts)
	if err != nil {
		return err
	}
	printComplaintTable(env.out, items)
	return nil
}

func runShow(env *commandEnv, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: streetlightctl show <id>")
	}
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	complaint, err := c.GetComplaint(args[0])
	if err != nil {
		return err
	}
	printComplaint(env.out, complaint)
	return nil
}

func runUpdateStatus(env *commandEnv, args []string) error {
	var status, notes string
	fs := newFlags("update-status", env.out)
	fs.StringVar(&status, "status", "", "new status")
	fs.StringVar(&notes, "notes", "", "admin notes (kept unchanged when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || status == "" {
		return errors.New("usage: streetlightctl update-status <id> --status <status> [--notes text]")
	}
	var notesArg *string
	if fs.Changed("notes") {
		notesArg = &notes
	}
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	complaint, err := c.UpdateStatus(fs.Arg(0), domain.ComplaintStatus(status), notesArg)
	if err != nil {
		return err
	}
	printComplaint(env.out, complaint)
	return nil
}

func runStats(env *commandEnv, _ []string) error {
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	stats, err := c.Stats()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(env.out, 0, 4, 2, ' ', 0)
	for _, status := range domain.ComplaintStatuses {
		fmt.Fprintf(tw, "%s\t%d\n", status, stats.ByStatus[status])
	}
	fmt.Fprintf(tw, "total\t%d\n", stats.Total)
	return tw.Flush()
}

func runUsers(env *commandEnv, _ []string) error {
	c, _, err := env.signedIn()
	if err != nil {
		return err
	}
	users, err := c.Users()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(env.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCOMPLAINTS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Role, u.ComplaintsCount)
	}
	return tw.Flush()
}

func printComplaintTable(out io.Writer, items []dto.ComplaintResponse) {
	if len(items) == 0 {
		fmt.Fprintln(out, "no complaints")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tUPDATED\tOWNER\tADDRESS")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Status, c.UpdatedAt.Local().Format(time.DateTime), c.UserName, c.Location.Address)
	}
	_ = tw.Flush()
}

func printComplaint(out io.Writer, c *dto.ComplaintResponse) {
	fmt.Fprintf(out, "Complaint %s [%s]\n", c.ID, c.Status)
	fmt.Fprintf(out, "  owner:       %s (id %s)\n", c.UserName, c.UserID)
	fmt.Fprintf(out, "  address:     %s (%.6f, %.6f)\n", c.Location.Address, c.Location.Coordinates.Lat, c.Location.Coordinates.Lng)
	fmt.Fprintf(out, "  description: %s\n", c.Description)
	fmt.Fprintf(out, "  created:     %s\n", c.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  updated:     %s\n", c.UpdatedAt.Local().Format(time.DateTime))
	if c.AdminNotes != nil {
		fmt.Fprintf(out, "  notes:       %s\n", *c.AdminNotes)
	}
}
