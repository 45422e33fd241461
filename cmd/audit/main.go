// vidrepair audit — offline sweep of a content tree for broken YouTube
// references.
//
// Scans the given directory, validates every unique video URL, and prints
// a classified report. With --autofix it also searches for embeddable
// replacements and writes a replacement map. Without YOUTUBE_API_KEY the
// audit still runs on the fast oEmbed tier alone; autofix needs the key.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/adhamqabban37/vidrepair/internal/audit"
	"github.com/adhamqabban37/vidrepair/internal/env"
	"github.com/adhamqabban37/vidrepair/internal/repair"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

func main() {
	env.Load()

	autofix := flag.Bool("autofix", false, "search for replacements for broken references and write a replacement map")
	out := flag.String("out", "", "replacement map output path; prints to stdout when unset (with --autofix)")
	pace := flag.Float64("pace", 2, "validations per second")
	flag.Parse()

	root := flag.Arg(0)
	if root == "" {
		root = "."
	}

	if err := run(root, *autofix, *out, *pace); err != nil {
		slog.Error("audit failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(root string, autofix bool, out string, pace float64) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}

	oembed := &validate.OEmbedClient{
		HTTP:    httpClient,
		Timeout: env.Duration("OEMBED_TIMEOUT", 5*time.Second),
	}
	api := &validate.DataAPIClient{
		Key:         env.Str("YOUTUBE_API_KEY", ""),
		FallbackKey: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		HTTP:        httpClient,
		Timeout:     env.Duration("DATA_API_TIMEOUT", 8*time.Second),
	}
	if !api.Available() {
		slog.Warn("no YOUTUBE_API_KEY, running fast tier only; restriction reasons will be coarse")
	}
	cache := validate.NewOutcomeCache(env.Str("REDIS_URL", ""), env.Duration("CACHE_TTL", 2*time.Minute))

	auditor := &audit.Auditor{
		Strategy: validate.NewStrategy(oembed, api, cache),
		Pace:     rate.NewLimiter(rate.Limit(pace), 1),
		Exts:     env.List("AUDIT_EXTENSIONS", ""),
	}
	if autofix {
		if !env.Bool("ENABLE_VIDEO_REPAIR", false) {
			return fmt.Errorf("autofix requires ENABLE_VIDEO_REPAIR=true")
		}
		if !api.Available() {
			return fmt.Errorf("autofix requires YOUTUBE_API_KEY")
		}
		auditor.Resolver = &repair.Resolver{Search: api, Vet: api}
	}

	report, err := auditor.Run(ctx, root)
	if err != nil {
		return err
	}
	if err := report.WriteText(os.Stdout); err != nil {
		return err
	}

	if !autofix {
		return nil
	}
	rm, err := auditor.AutoFix(ctx, report)
	if err != nil {
		return err
	}
	if out == "" {
		return rm.WriteJSON(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := rm.WriteJSON(f); err != nil {
		return err
	}
	slog.Info("replacement map written",
		slog.String("path", out),
		slog.Int("replacements", len(rm.Replacements)))
	return nil
}
