package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/session"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	pkgevents "github.com/bibbank/loanintake/pkg/events"
	pkgkafka "github.com/bibbank/loanintake/pkg/kafka"
	"github.com/bibbank/loanintake/pkg/money"
	"github.com/bibbank/loanintake/pkg/observability"
	"github.com/bibbank/loanintake/pkg/tlsutil"
)

func runQuote(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("quote", "--principal N --rate R --years Y")
	principal := fs.String("principal", "", "loan amount in rupees")
	rate := fs.String("rate", "", "annual interest rate in percent")
	years := fs.Int("years", 0, "tenure in years")
	full := fs.Bool("full", false, "print every month of the schedule instead of the first year")
	if err := parse(fs, args); err != nil {
		return err
	}

	p, err := decimal.NewFromString(*principal)
	if err != nil {
		return fmt.Errorf("--principal: %w", err)
	}
	r, err := decimal.NewFromString(*rate)
	if err != nil {
		return fmt.Errorf("--rate: %w", err)
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	q, err := c.Quote(ctx, p, r, *years, *full)
	if err != nil {
		return err
	}
	printQuote(a.stdout, q)
	return nil
}

func printQuote(w io.Writer, q dto.EMIQuoteResponse) {
	fmt.Fprintf(w, "Loan amount     %s (%s)\n", money.FormatINR(q.Principal), money.FormatShortINR(q.Principal))
	fmt.Fprintf(w, "Interest rate   %s%% p.a. for %d years\n", q.AnnualRatePercent.String(), q.TenureYears)
	fmt.Fprintf(w, "Monthly EMI     %s\n", money.FormatINR(q.MonthlyPayment))
	fmt.Fprintf(w, "Total interest  %s\n", money.FormatINR(q.TotalInterest))
	fmt.Fprintf(w, "Total payment   %s\n\n", money.FormatINR(q.TotalPayment))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tInterest\tPrincipal\tBalance\t")
	for _, row := range q.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", row.Month,
			money.FormatINR(row.Interest), money.FormatINR(row.Principal), money.FormatINR(row.Balance))
	}
	_ = tw.Flush() //nolint:errcheck // terminal output
}

// flagName turns a field's wire name into a flag name, e.g. full_name -> full-name.
func flagName(f valueobject.Field) string {
	return strings.ReplaceAll(string(f), "_", "-")
}

func runApply(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("apply", "--full-name ... --tenure-years Y")
	values := make(map[valueobject.Field]*string, len(valueobject.AllFields))
	for _, f := range valueobject.AllFields {
		values[f] = fs.String(flagName(f), "", "applicant "+strings.ReplaceAll(string(f), "_", " "))
	}
	retry := fs.Bool("retry", false, "resubmit once after a transient failure")
	tz := fs.String("timezone", "Asia/Kolkata", "time zone used for the age check")
	if err := parse(fs, args); err != nil {
		return err
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("--timezone: %w", err)
	}
	rules := service.DefaultValidationRules()
	rules.Location = loc

	c, err := a.client()
	if err != nil {
		return err
	}
	var receipt session.Receipt
	submitter := session.SubmitterFunc(func(ctx context.Context, in service.ApplicationInput) (session.Receipt, error) {
		resp, err := c.Submit(ctx, usecase.FromApplicationInput(in))
		if err != nil {
			return session.Receipt{}, err
		}
		receipt = session.Receipt{ID: resp.ID, CreatedAt: resp.CreatedAt, Message: resp.Message}
		return receipt, nil
	})

	var opts []session.Option
	if *retry {
		opts = append(opts, session.WithAutoRetry())
	}
	sess := session.New(submitter, *values[valueobject.FieldLoanAmount], rules, opts...)
	for _, f := range valueobject.AllFields {
		if _, err := sess.ChangeField(f, *values[f]); err != nil {
			return err
		}
	}

	if st := sess.State(); !st.CanSubmit() {
		printFieldErrors(a.stderr, st.Errors())
		return errors.New("application not submitted: fix the fields above")
	}

	st, err := sess.Submit(ctx)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			printFieldErrors(a.stderr, st.Errors())
			return errors.New("application rejected by the server")
		}
		return fmt.Errorf("%s: %w", st.Message(), err)
	}
	fmt.Fprintln(a.stdout, st.Message())
	fmt.Fprintf(a.stdout, "Reference: %s\n", receipt.ID)
	return nil
}

func printFieldErrors(w io.Writer, errs valueobject.FieldErrors) {
	for _, f := range errs.Fields() {
		fmt.Fprintf(w, "  --%s: %s\n", flagName(f), errs[f])
	}
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("list", "[--date YYYY-MM-DD]")
	date := fs.String("date", "", "only applications created on this date")
	password := fs.String("password", "", "admin password (env INTAKE_ADMIN_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}

	c, err := a.adminClient(ctx, *password)
	if err != nil {
		return err
	}
	list, err := c.List(ctx, *date)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tSTATE\tAMOUNT\tTENURE")
	for _, la := range list.Applications {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dy\n", la.ID, la.CreatedAt.Format(time.RFC3339),
			la.FullName, la.State, money.FormatINR(la.LoanAmount), la.TenureYears)
	}
	_ = tw.Flush() //nolint:errcheck // terminal output
	fmt.Fprintf(a.stdout, "%d application(s)\n", list.Count)
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("delete", "--id ID | --date YYYY-MM-DD")
	id := fs.String("id", "", "application ID")
	date := fs.String("date", "", "delete every application created on this date")
	password := fs.String("password", "", "admin password (env INTAKE_ADMIN_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if (*id == "") == (*date == "") {
		fs.Usage()
		return errUsage
	}

	c, err := a.adminClient(ctx, *password)
	if err != nil {
		return err
	}
	if *id != "" {
		if err := c.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "deleted %s\n", *id)
		return nil
	}
	out, err := c.DeleteDay(ctx, *date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted %d application(s) from %s\n", out.Deleted, out.Date)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("export", "--date YYYY-MM-DD [--format xlsx|csv] [--out FILE]")
	date := fs.String("date", "", "export applications created on this date")
	format := fs.String("format", "xlsx", "xlsx or csv")
	out := fs.StringP("out", "o", "", "output file (default: the server's file name)")
	password := fs.String("password", "", "admin password (env INTAKE_ADMIN_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *date == "" {
		fs.Usage()
		return errUsage
	}
	if *password == "" {
		*password = a.getenv("INTAKE_ADMIN_PASSWORD")
	}

	c, err := a.client()
	if err != nil {
		return err
	}
	resp, err := c.Export(ctx, dto.ExportRequest{Password: *password, Date: *date, Format: *format})
	if err != nil {
		return err
	}
	if resp.Empty {
		fmt.Fprintln(a.stdout, resp.Message)
		return nil
	}

	path := *out
	if path == "" {
		path = filepath.Base(resp.Filename)
	}
	if err := os.WriteFile(path, resp.Data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.stdout, "wrote %s (%d bytes)\n", path, len(resp.Data))
	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("watch", "--brokers HOST:PORT[,...]")
	brokers := fs.StringSlice("brokers", strings.Split(envOr(a.getenv, "INTAKE_KAFKA_BROKERS", "localhost:9092"), ","), "kafka brokers (env INTAKE_KAFKA_BROKERS)")
	topic := fs.String("topic", "intake.loan-applications", "event topic")
	group := fs.String("group", "", "consumer group; empty reads without committing offsets")
	fromStart := fs.Bool("from-beginning", false, "start at the oldest retained event")
	useTLS := fs.Bool("tls", false, "connect to the brokers over TLS")
	if err := parse(fs, args); err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{Level: "warn", Format: "text", Service: "intakectl", Output: a.stderr})

	var opts []pkgkafka.ConsumerOption
	if *fromStart {
		opts = append(opts, pkgkafka.FromBeginning())
	}
	consumer, err := pkgkafka.NewConsumer(pkgkafka.Config{
		Brokers:       *brokers,
		ClientID:      "intakectl",
		ConsumerGroup: *group,
		TLS:           *useTLS,
	}, *topic, eventPrinter(a.stdout), logger, opts...)
	if err != nil {
		return err
	}
	defer consumer.Close()

	fmt.Fprintf(a.stderr, "watching %s on %s, Ctrl-C to stop\n", *topic, strings.Join(*brokers, ","))
	return consumer.Start(ctx)
}

// eventPrinter prints one line per event envelope.
func eventPrinter(w io.Writer) pkgkafka.Handler {
	return func(_ context.Context, msg pkgkafka.Message) error {
		env, err := pkgevents.Unmarshal(msg.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %-36s  %s  %s\n",
			env.OccurredAt.Format(time.RFC3339), env.EventType, env.AggregateID, string(env.Data))
		return nil
	}
}

func runCerts(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("certs", "[--hosts localhost,127.0.0.1] [--out DIR]")
	hosts := fs.StringSlice("hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the server certificate")
	dir := fs.String("out", "certs", "output directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := tlsutil.GenerateSelfSignedCert(*hosts, *dir); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %s, %s and %s to %s\n", tlsutil.CAFile, tlsutil.ServerFile, tlsutil.ServerKeyFile, *dir)
	return nil
}
