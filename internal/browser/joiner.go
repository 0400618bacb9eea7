package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"teamjoin/internal/config"
	"teamjoin/internal/models"
)

var ErrHomeTimeout = errors.New("login did not reach home page")

type Credentials struct {
	Email     string
	Code      string
	InviteURL string
}

// Joiner drives a fresh headless Chromium through email+code login and then
// opens the invite link.
type Joiner struct {
	cfg config.BrowserConfig
}

func NewJoiner(cfg config.BrowserConfig) *Joiner {
	return &Joiner{cfg: cfg}
}

// Join never returns an error: every failure is folded into the outcome.
// The browser is closed before it returns.
func (j *Joiner) Join(ctx context.Context, cred Credentials) models.JoinOutcome {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", j.cfg.Headless),
	)
	if j.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(j.cfg.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// браузер стартует на первом Run; без таймаута, иначе он умрёт вместе с шагом
	if err := chromedp.Run(bctx); err != nil {
		return models.Errored(fmt.Errorf("start browser: %w", err))
	}
	if err := j.login(bctx, cred); err != nil {
		return models.Errored(err)
	}
	outcome, err := j.openInvite(bctx, cred.InviteURL)
	if err != nil {
		return models.Errored(err)
	}
	return outcome
}

func (j *Joiner) login(ctx context.Context, cred Credentials) error {
	start := time.Now()
	if err := j.step(ctx, "open login", j.cfg.PageTimeout,
		chromedp.Navigate(j.cfg.BaseURL),
		chromedp.Click(clickableByText(loginText), chromedp.BySearch),
		chromedp.SendKeys(emailInputSel, cred.Email, chromedp.ByQuery),
		chromedp.Click(clickableByText(continueText), chromedp.BySearch),
	); err != nil {
		return err
	}

	if err := j.step(ctx, "wait code input", j.cfg.CodeTimeout,
		chromedp.WaitVisible(codeInputSel, chromedp.ByQuery),
	); err != nil {
		return err
	}
	if err := j.step(ctx, "submit code", j.cfg.PageTimeout,
		chromedp.SendKeys(codeInputSel, cred.Code, chromedp.ByQuery),
		chromedp.Click(clickableByText(submitText), chromedp.BySearch),
	); err != nil {
		return err
	}

	if err := j.waitHome(ctx); err != nil {
		return err
	}
	log.Printf("[browser][login] ok took=%s", time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (j *Joiner) waitHome(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.HomeTimeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		var location string
		if err := chromedp.Run(ctx, chromedp.Location(&location)); err == nil && reachedHome(location) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w within %s", ErrHomeTimeout, j.cfg.HomeTimeout)
		case <-ticker.C:
		}
	}
}

func (j *Joiner) openInvite(ctx context.Context, inviteURL string) (models.JoinOutcome, error) {
	var pageText string
	var buttons []*cdp.Node
	if err := j.step(ctx, "open invite", j.cfg.PageTimeout,
		chromedp.Navigate(inviteURL),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &pageText),
		chromedp.Nodes(buttonByText(joinTeamText), &buttons, chromedp.BySearch, chromedp.AtLeast(0)),
	); err != nil {
		return models.JoinOutcome{}, err
	}

	if rejected, ok := InviteRejected(pageText); ok {
		return rejected, nil
	}
	if len(buttons) == 0 {
		return models.Failed("join button not found"), nil
	}

	if err := j.step(ctx, "join team", j.cfg.PageTimeout+j.cfg.JoinSettle,
		chromedp.MouseClickNode(buttons[0]),
		chromedp.Sleep(j.cfg.JoinSettle),
	); err != nil {
		return models.JoinOutcome{}, err
	}
	return models.Success(), nil
}

func (j *Joiner) step(ctx context.Context, name string, timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, actions...); err != nil {
		log.Printf("[browser][%s] err=%v", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
