package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/target/jobwatch/internal/data"
	"github.com/target/jobwatch/internal/domain/model"
)

type addCompanyOptions struct {
	Name    string
	URL     string
	ATSType string
}

func parseAddCompanyFlags(args []string) (addCompanyOptions, error) {
	fs := flag.NewFlagSet("add-company", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts addCompanyOptions
	fs.StringVar(&opts.Name, "name", "", "Company name (required)")
	fs.StringVar(&opts.URL, "url", "", "Career page URL (required)")
	fs.StringVar(&opts.ATSType, "ats", "", "Optional ATS hint (greenhouse, lever, workday)")

	if err := fs.Parse(args); err != nil {
		return addCompanyOptions{}, err
	}

	opts.Name = strings.TrimSpace(opts.Name)
	opts.URL = strings.TrimSpace(opts.URL)
	opts.ATSType = strings.TrimSpace(opts.ATSType)

	if opts.Name == "" {
		return addCompanyOptions{}, errors.New("--name is required")
	}
	if opts.URL == "" {
		return addCompanyOptions{}, errors.New("--url is required")
	}
	parsed, err := url.Parse(opts.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return addCompanyOptions{}, fmt.Errorf("--url must be an absolute URL, got %q", opts.URL)
	}

	return opts, nil
}

func runAddCompany(cmdCtx *commandContext, args []string) error {
	opts, err := parseAddCompanyFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		req := model.UpsertCompanyRequest{
			Name:          opts.Name,
			CareerPageURL: opts.URL,
		}
		if opts.ATSType != "" {
			req.ATSType = &opts.ATSType
		}

		company, upsertErr := data.NewCompanyRepo(db).UpsertByCareerURL(ctx, &req)
		if upsertErr != nil {
			return upsertErr
		}

		if err := writef(os.Stdout, "Company %d: %s (%s)\n",
			company.ID, company.Name, company.CareerPageURL); err != nil {
			return fmt.Errorf("write company summary: %w", err)
		}
		return nil
	})
}

type subscriptionOptions struct {
	UserID    string
	CompanyID int64
}

func parseSubscriptionFlags(name string, args []string) (subscriptionOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts subscriptionOptions
	fs.StringVar(&opts.UserID, "user", "", "User identifier (required)")
	fs.Int64Var(&opts.CompanyID, "company-id", 0, "Company ID (required)")

	if err := fs.Parse(args); err != nil {
		return subscriptionOptions{}, err
	}

	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return subscriptionOptions{}, errors.New("--user is required")
	}
	if opts.CompanyID <= 0 {
		return subscriptionOptions{}, errors.New("--company-id must be positive")
	}

	return opts, nil
}

func runSubscribe(cmdCtx *commandContext, args []string) error {
	opts, err := parseSubscriptionFlags("subscribe", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		company, lookupErr := data.NewCompanyRepo(db).GetByID(ctx, opts.CompanyID)
		if lookupErr != nil {
			return lookupErr
		}

		subs := data.NewSubscriptionRepo(db)
		if _, subErr := subs.Subscribe(ctx, opts.UserID, company.ID); subErr != nil {
			return subErr
		}

		count, countErr := subs.CountForCompany(ctx, company.ID)
		if countErr != nil {
			return countErr
		}

		if err := writef(os.Stdout, "Subscribed %s to %s (%d subscribers)\n",
			opts.UserID, company.Name, count); err != nil {
			return fmt.Errorf("write subscribe summary: %w", err)
		}
		return nil
	})
}

func runUnsubscribe(cmdCtx *commandContext, args []string) error {
	opts, err := parseSubscriptionFlags("unsubscribe", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		removed, unsubErr := data.NewSubscriptionRepo(db).Unsubscribe(ctx, opts.UserID, opts.CompanyID)
		if unsubErr != nil {
			return unsubErr
		}

		if !removed {
			return writef(os.Stdout, "No subscription found for %s on company %d\n",
				opts.UserID, opts.CompanyID)
		}
		return writef(os.Stdout, "Unsubscribed %s from company %d\n", opts.UserID, opts.CompanyID)
	})
}
