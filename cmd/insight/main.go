package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/bryanwahyu/insight-cli/internal/application"
	appanalysis "github.com/bryanwahyu/insight-cli/internal/application/analysis"
	appauth "github.com/bryanwahyu/insight-cli/internal/application/auth"
	appdownload "github.com/bryanwahyu/insight-cli/internal/application/download"
	apphistory "github.com/bryanwahyu/insight-cli/internal/application/history"
	"github.com/bryanwahyu/insight-cli/internal/config"
	domainanalysis "github.com/bryanwahyu/insight-cli/internal/domain/analysis"
	"github.com/bryanwahyu/insight-cli/internal/domain/apierrors"
	"github.com/bryanwahyu/insight-cli/internal/domain/files"
	"github.com/bryanwahyu/insight-cli/internal/infra/api"
	"github.com/bryanwahyu/insight-cli/internal/infra/render"
	"github.com/bryanwahyu/insight-cli/internal/infra/sessionstore"
	"github.com/bryanwahyu/insight-cli/internal/infra/storage"
	"github.com/bryanwahyu/insight-cli/internal/pkg/logger"
)

const usage = `usage: insight <command> [args]

commands:
  register -u <username> -p <password>   create an account
  login    -u <username> -p <password>   log in and load history
  logout                                  log out
  analyze  <file>                         upload a file for AI analysis
  history                                 list analyzed files
  delete   <file-id> [-y]                 delete a file and its analysis
  download <id> <pdf|txt|original> [-name <source-filename>]
                                          download a rendered analysis
                                          (pdf/txt take the result id,
                                          original takes the file id)
`

type app struct {
	console  *render.Console
	auth     *appauth.Service
	analysis *appanalysis.Service
	history  *apphistory.Service
	download *appdownload.Service
}

func main() {
	// .env for local development
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Path, cfg.Log.Prod)
	defer log.Sync()

	console := render.NewConsole()

	sessPath := cfg.Session.Path
	if sessPath == "" {
		sessPath, err = sessionstore.DefaultPath()
		if err != nil {
			console.Errorf("session path error: %v", err)
			os.Exit(1)
		}
	}
	store := sessionstore.NewFile(sessPath)
	client := api.New(cfg.API.BaseURL, cfg.Timeout(), store, log)

	historySvc := &apphistory.Service{API: client, Sessions: store}
	analysisSvc := &appanalysis.Service{API: client, Clock: application.SystemClock{}}
	authSvc := &appauth.Service{Auth: client, Sessions: store}

	var sink appdownload.Sink = &storage.LocalSink{Dir: cfg.Downloads.Dir}
	if cfg.Downloads.S3.Enabled {
		s3 := cfg.Downloads.S3
		sink, err = storage.NewObjectSink(context.Background(),
			s3.Endpoint, s3.Region, s3.BucketName, s3.Prefix,
			s3.AccessKey, s3.SecretKey, s3.UseSSL,
		)
		if err != nil {
			console.Errorf("object storage init error: %v", err)
			os.Exit(1)
		}
	}
	downloadSvc := &appdownload.Service{API: client, Sink: sink}

	// Cross-wiring, done once here: entering the logged-in state loads the
	// history, a finished analysis refreshes it silently, leaving the
	// logged-in state resets dependent views, and a 401 on any request
	// forces a logout exactly once.
	authSvc.OnLogin = func(ctx context.Context) {
		entries, err := historySvc.Refresh(ctx)
		if err != nil {
			reportQuiet(console, err, "Error loading history: %v")
			return
		}
		console.History(entries)
	}
	analysisSvc.OnAnalyzed = func(ctx context.Context) {
		if _, err := historySvc.Refresh(ctx); err != nil {
			reportQuiet(console, err, "Error refreshing history: %v")
		}
	}
	authSvc.OnLogout = func() {
		historySvc.Reset()
		analysisSvc.Reset()
	}
	client.OnUnauthorized(func() {
		if authSvc.Expire() {
			console.Errorf("Session expired. Please log in again.")
		}
	})
	authSvc.Resume()

	a := &app{
		console:  console,
		auth:     authSvc,
		analysis: analysisSvc,
		history:  historySvc,
		download: downloadSvc,
	}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	ctx := context.Background()

	switch args[0] {
	case "register":
		return a.register(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout()
	case "analyze":
		return a.analyze(ctx, args[1:])
	case "history":
		return a.listHistory(ctx)
	case "delete":
		return a.deleteFile(ctx, args[1:])
	case "download":
		return a.downloadFile(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func (a *app) register(ctx context.Context, args []string) int {
	username, password, ok := credentials("register", args)
	if !ok {
		return 2
	}
	if err := a.auth.Register(ctx, username, password); err != nil {
		return reportQuiet(a.console, err, "Registration Error: %v")
	}
	a.console.Successf("Registration successful! Please login.")
	return 0
}

func (a *app) login(ctx context.Context, args []string) int {
	username, password, ok := credentials("login", args)
	if !ok {
		return 2
	}
	sess, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return reportQuiet(a.console, err, "Login Error: %v")
	}
	a.console.Successf("Login successful! Welcome, %s.", sess.DisplayName)
	return 0
}

func (a *app) logout() int {
	if err := a.auth.Logout(); err != nil {
		a.console.Errorf("Logout error: %v", err)
		return 1
	}
	a.console.Successf("Logged out successfully.")
	return 0
}

func (a *app) analyze(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: insight analyze <file>")
		return 2
	}
	if !a.loggedIn() {
		a.console.Infof("Please login or register to upload and analyze files.")
		return 1
	}

	f, err := os.Open(args[0])
	if err != nil {
		a.console.Errorf("Analysis failed: %v", err)
		return 1
	}
	defer f.Close()

	name := filepath.Base(args[0])
	a.console.Infof("Analyzing %s file %q...", domainanalysis.Classify(name), name)

	if _, err := a.analysis.Analyze(ctx, name, f); err != nil {
		var vErr *apierrors.ValidationError
		if errors.As(err, &vErr) {
			a.console.Errorf("Invalid file type: %v", vErr)
			return 1
		}
		return reportQuiet(a.console, err, "Analysis failed: %v")
	}
	a.console.Result(a.analysis.Job())
	return 0
}

func (a *app) listHistory(ctx context.Context) int {
	entries, err := a.history.Refresh(ctx)
	if err != nil {
		return reportQuiet(a.console, err, "Error loading history: %v")
	}
	a.console.History(entries)
	return 0
}

func (a *app) deleteFile(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("y", false, "skip the confirmation prompt")
	if fs.Parse(args) != nil || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: insight delete <file-id> [-y]")
		return 2
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "file id must be a number")
		return 2
	}

	confirm := func() bool {
		if *yes {
			return true
		}
		return a.console.Confirm("Are you sure you want to delete this file and its analysis? This action cannot be undone.")
	}
	if err := a.history.Delete(ctx, files.FileID(id), confirm); err != nil {
		return reportQuiet(a.console, err, "Error deleting file: %v")
	}
	a.console.Successf("File deleted successfully!")
	return 0
}

func (a *app) downloadFile(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	name := fs.String("name", "analysis", "source filename, drives the stored name")
	if fs.Parse(args) != nil || fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: insight download <id> <pdf|txt|original> [-name <source-filename>]")
		return 2
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "id must be a number")
		return 2
	}
	format := files.Format(fs.Arg(1))

	dest, err := a.download.Download(ctx, id, format, *name)
	if err != nil {
		return reportQuiet(a.console, err, "Download failed: %v")
	}
	a.console.Successf("%s downloaded successfully! Saved to %s", format, dest)
	return 0
}

func (a *app) loggedIn() bool {
	_, ok := a.auth.Resume()
	return ok
}

func credentials(cmd string, args []string) (string, string, bool) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if fs.Parse(args) != nil || *username == "" || *password == "" {
		fmt.Fprintf(os.Stderr, "usage: insight %s -u <username> -p <password>\n", cmd)
		return "", "", false
	}
	return *username, *password, true
}

// reportQuiet surfaces an error unless it is the unauthorized kind, whose
// user-visible surface is the session-expired notification the 401 hook
// already produced.
func reportQuiet(console *render.Console, err error, format string) int {
	if !errors.Is(err, apierrors.ErrUnauthorized) {
		console.Errorf(format, err)
	}
	return 1
}
