package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/dashboard"
	"github.com/healthtrack/healthtrack/internal/client/viewmodel"
)

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// prompt returns value when set, otherwise asks for it.
func (a *App) prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return readLine(a.in, a.out, label)
}

func (a *App) password() (string, error) {
	pw, err := a.readPassword()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (a *App) saveSession(ctx context.Context, resp *api.AuthResponse) error {
	if resp.Token == "" || resp.User == nil {
		return errors.New("server did not return a session")
	}
	return a.store.Save(ctx, resp.Token, *resp.User)
}

func cmdRegister(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	age := fs.Int("age", 0, "age in years (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *name, err = a.prompt(*name, "Name"); err != nil {
		return err
	}
	if *email, err = a.prompt(*email, "Email"); err != nil {
		return err
	}
	pw, err := a.password()
	if err != nil {
		return err
	}

	req := api.RegisterRequest{Name: *name, Email: *email, Password: pw}
	if *age > 0 {
		req.Age = age
	}

	resp, err := a.client.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", resp.User.Name)
	return nil
}

func cmdLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email, err = a.prompt(*email, "Email"); err != nil {
		return err
	}
	pw, err := a.password()
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, api.LoginRequest{Email: *email, Password: pw})
	if err != nil {
		return err
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s.\n", resp.User.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *App, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, a *App, _ []string) error {
	if !a.store.IsAuthenticated(ctx) {
		return errNotLoggedIn
	}
	u, err := a.store.User(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(a.out, "Logged in (profile unavailable).")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	return nil
}

func cmdMeds(ctx context.Context, a *App, _ []string) error {
	meds, err := a.client.Medications(ctx)
	if err != nil {
		return err
	}
	if len(meds) == 0 {
		fmt.Fprintln(a.out, "No medications yet. Add one with: healthctl add-med")
		return nil
	}
	printMedications(a.out, meds)
	return nil
}

func medicationFlags(a *App, name string) (*flag.FlagSet, *api.MedicationInput) {
	fs := a.flagSet(name)
	in := &api.MedicationInput{}
	fs.StringVar(&in.Name, "name", "", "medication name")
	fs.StringVar(&in.Dosage, "dosage", "", "dosage, e.g. 81mg")
	fs.StringVar(&in.Frequency, "frequency", "", "frequency, e.g. daily")
	fs.StringVar(&in.Instructions, "instructions", "", "instructions (optional)")
	return fs, in
}

func cmdAddMed(ctx context.Context, a *App, args []string) error {
	fs, in := medicationFlags(a, "add-med")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if in.Name, err = a.prompt(in.Name, "Name"); err != nil {
		return err
	}
	if in.Dosage, err = a.prompt(in.Dosage, "Dosage"); err != nil {
		return err
	}
	if in.Frequency, err = a.prompt(in.Frequency, "Frequency"); err != nil {
		return err
	}

	med, err := a.client.AddMedication(ctx, *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s).\n", med.Name, med.ID)
	return nil
}

func cmdEditMed(ctx context.Context, a *App, args []string) error {
	fs, in := medicationFlags(a, "edit-med")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: healthctl edit-med -name N -dosage D -frequency F [-instructions I] ID")
	}

	med, err := a.client.UpdateMedication(ctx, fs.Arg(0), *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s.\n", med.Name)
	return nil
}

func cmdRmMed(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: healthctl rm-med ID")
	}
	if err := a.client.DeleteMedication(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func cmdMetrics(ctx context.Context, a *App, _ []string) error {
	metrics, err := a.client.Metrics(ctx)
	if err != nil {
		return err
	}
	if len(metrics) == 0 {
		fmt.Fprintln(a.out, "No readings yet. Record one with: healthctl add-metric")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tREADING")
	for _, m := range metrics {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\n", m.Date.In(a.loc).Format("Jan 2 15:04"), m.Type, viewmodel.FormatReading(m), m.Unit)
	}
	return tw.Flush()
}

func cmdAddMetric(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("add-metric")
	typ := fs.String("type", "", "heart-rate, blood-pressure, weight, temperature or glucose")
	value := fs.Float64("value", 0, "reading value")
	unit := fs.String("unit", "", "unit, e.g. bpm, kg")
	systolic := fs.Int("systolic", 0, "systolic pressure (blood-pressure only)")
	diastolic := fs.Int("diastolic", 0, "diastolic pressure (blood-pressure only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var m api.NewMetric
	switch api.MetricType(*typ) {
	case api.MetricBloodPressure:
		if *systolic <= 0 || *diastolic <= 0 {
			return errors.New("blood-pressure needs -systolic and -diastolic")
		}
		m = api.BloodPressureMetric{Systolic: *systolic, Diastolic: *diastolic}
	case api.MetricHeartRate, api.MetricWeight, api.MetricTemperature, api.MetricGlucose:
		if *unit == "" {
			return fmt.Errorf("%s needs -value and -unit", *typ)
		}
		m = api.SingleValueMetric{Type: api.MetricType(*typ), Value: *value, Unit: *unit}
	default:
		return fmt.Errorf("unknown metric type %q", *typ)
	}

	rec, err := a.client.AddMetric(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded %s %s %s.\n", rec.Type, viewmodel.FormatReading(*rec), rec.Unit)
	return nil
}

func cmdHistory(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("history")
	typ := fs.String("type", string(api.MetricHeartRate), "metric type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	history, err := a.client.MetricHistory(ctx)
	if err != nil {
		return err
	}
	printSeries(a.out, api.MetricType(*typ), viewmodel.BuildSeriesIn(history, api.MetricType(*typ), a.loc))
	return nil
}

func cmdDashboard(ctx context.Context, a *App, _ []string) error {
	d, err := dashboard.Load(ctx, a.client, a.loc)
	if err != nil {
		return err
	}

	s := d.Summary
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Medications\t%d\n", s.Medications)
	fmt.Fprintf(tw, "Heart rate\t%s\n", s.HeartRate)
	fmt.Fprintf(tw, "Blood pressure\t%s\n", s.BloodPressure)
	fmt.Fprintf(tw, "Metrics tracked\t%d\n", s.MetricsTracked)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range dashboard.Types {
		if len(d.Series[t]) == 0 {
			continue
		}
		fmt.Fprintln(a.out)
		printSeries(a.out, t, d.Series[t])
	}
	return nil
}

func printMedications(w io.Writer, meds []api.Medication) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDOSAGE\tFREQUENCY\tINSTRUCTIONS")
	for _, m := range meds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Dosage, m.Frequency, m.Instructions)
	}
	_ = tw.Flush()
}

// printSeries draws one line per point with a bar scaled to the largest
// value in the series. Non-positive values get an empty bar.
func printSeries(w io.Writer, t api.MetricType, points []viewmodel.Point) {
	fmt.Fprintln(w, t)
	if len(points) == 0 {
		fmt.Fprintln(w, "  no readings")
		return
	}

	top := 0.0
	for _, p := range points {
		if p.Value > top {
			top = p.Value
		}
	}
	const width = 30
	for _, p := range points {
		n := 0
		if top > 0 {
			n = min(max(int(p.Value/top*width), 0), width)
		}
		fmt.Fprintf(w, "  %-6s %s %s\n", p.Label, strings.Repeat("#", n), strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
}
