// Command client is an interactive shell for editing the signed-in user's
// profile: pick an avatar image, edit account fields and submit them.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/atinyakov/profilepanel/internal/client/account"
	"github.com/atinyakov/profilepanel/internal/client/config"
	"github.com/atinyakov/profilepanel/internal/client/preview"
	"github.com/atinyakov/profilepanel/internal/client/profile"
	"github.com/atinyakov/profilepanel/internal/client/session"
	"github.com/atinyakov/profilepanel/internal/client/storage"
	"github.com/atinyakov/profilepanel/internal/client/transport"
	"github.com/atinyakov/profilepanel/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("Profile panel client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	opts, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, log.Log); err != nil {
		log.Log.Fatal("client failed", zap.Error(err))
	}
}

func run(ctx context.Context, opts *config.Options, log *zap.Logger) error {
	httpClient, err := transport.NewHTTPClient(transport.Options{
		CAFile:   opts.CAFile,
		CertFile: opts.CertFile,
		KeyFile:  opts.KeyFile,
	})
	if err != nil {
		return err
	}

	uploader, err := newUploader(ctx, opts, httpClient, log)
	if err != nil {
		return err
	}

	accounts := account.NewClient(httpClient, opts.APIURL, log)

	sess := session.NewStore(opts.SessionFile, log)
	if err := sess.Load(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if opts.UserID != "" && sess.CurrentUser().ID != opts.UserID {
		user, err := accounts.GetUser(ctx, opts.UserID)
		if err != nil {
			return fmt.Errorf("fetch user %s: %w", opts.UserID, err)
		}
		sess.SignInSuccess(user)
	}
	if sess.CurrentUser().ID == "" {
		return fmt.Errorf("no signed-in user: pass -user or set USER_ID")
	}

	panel := profile.New(profile.Deps{
		Session:  sess,
		Uploader: uploader,
		Account:  accounts,
		Previews: preview.NewStore(),
		Log:      log,
		OnProgress: func(attempt uint64, percent int) {
			fmt.Printf("\rupload #%d: %d%%", attempt, percent)
			if percent == 100 {
				fmt.Println()
			}
		},
	})

	sh := &shell{panel: panel, session: sess, out: os.Stdout}
	sh.run(ctx, os.Stdin)
	panel.Wait()
	return nil
}

func newUploader(ctx context.Context, opts *config.Options, httpClient *http.Client, log *zap.Logger) (profile.Uploader, error) {
	switch opts.Storage {
	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Endpoint:        opts.S3Endpoint,
			Region:          opts.S3Region,
			AccessKeyID:     opts.S3AccessKeyID,
			AccessKeySecret: opts.S3AccessKeySecret,
			UsePathStyle:    opts.S3PathStyle,
			HTTPClient:      httpClient,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Uploader(client, opts.S3Bucket, opts.S3PublicURL, log), nil
	default:
		return storage.NewCloudinaryUploader(httpClient, opts.CloudinaryURL,
			opts.CloudinaryCloudName, opts.CloudinaryUploadPreset, log), nil
	}
}
