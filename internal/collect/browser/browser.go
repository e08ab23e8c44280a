// Package browser collects outcomes from end-to-end scenarios driven through
// a real Chrome via chromedp.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	defaultTimeout = 15 * time.Second
	// Full HD
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

// Markup hooks rendered by the todo app.
const (
	listSelector    = ".todo-list"
	rowSelector     = ".item-row"
	titleSelector   = `input[name="title"]`
	confirmSelector = `form.delete-form [type="submit"]`
)

// Page is what a scenario can do with the app. *Browser implements it
// against Chrome; tests substitute an in-memory fake.
type Page interface {
	Home() error
	CountTasks() (int, error)
	CreateTask(title string) error
	DeleteLastTask() error
	HasText(text string) (bool, error)
}

// Options configure Chrome and the per-action timeout.
type Options struct {
	BaseURL  string
	Headless bool
	Timeout  time.Duration
	WindowW  int
	WindowH  int
}

// Launcher opens a fresh page and returns a cleanup that closes it.
type Launcher func(ctx context.Context) (Page, func(), error)

// NewLauncher starts one Chrome per call, which gives every scenario a
// clean profile.
func NewLauncher(opts Options) Launcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.WindowW == 0 || opts.WindowH == 0 {
		opts.WindowW, opts.WindowH = defaultWindowWidth, defaultWindowHeight
	}
	return func(ctx context.Context) (Page, func(), error) {
		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
		tabCtx, tabCancel := chromedp.NewContext(allocCtx)
		cleanup := func() {
			tabCancel()
			allocCancel()
		}
		// An empty Run starts the browser so launch errors surface here.
		if err := chromedp.Run(tabCtx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("starting chrome: %w", err)
		}
		return &Browser{ctx: tabCtx, baseURL: opts.BaseURL, timeout: opts.Timeout}, cleanup, nil
	}
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(opts.WindowW, opts.WindowH),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
	}
}

// Browser drives one Chrome tab.
type Browser struct {
	ctx     context.Context
	baseURL string
	timeout time.Duration
}

func (b *Browser) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Home opens the task list.
func (b *Browser) Home() error {
	if err := b.run(
		chromedp.Navigate(b.baseURL),
		chromedp.WaitVisible(listSelector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("open %s: %w", b.baseURL, err)
	}
	return nil
}

// CountTasks counts rows on the current list page.
func (b *Browser) CountTasks() (int, error) {
	var n int
	expr := fmt.Sprintf("document.querySelectorAll(%s).length", jsString(rowSelector))
	if err := b.run(chromedp.Evaluate(expr, &n)); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// CreateTask submits the new-task form and waits for the extra row.
func (b *Browser) CreateTask(title string) error {
	before, err := b.CountTasks()
	if err != nil {
		return err
	}
	var done bool
	if err := b.run(
		chromedp.WaitVisible(titleSelector, chromedp.ByQuery),
		chromedp.SendKeys(titleSelector, title+kb.Enter, chromedp.ByQuery),
		chromedp.Poll(listedAtLeast(before+1), &done, chromedp.WithPollingTimeout(b.timeout)),
	); err != nil {
		return fmt.Errorf("create task %q: %w", title, err)
	}
	return nil
}

// DeleteLastTask follows the last row's Delete link and confirms. It is a
// no-op on an empty list.
func (b *Browser) DeleteLastTask() error {
	before, err := b.CountTasks()
	if err != nil {
		return err
	}
	if before == 0 {
		return nil
	}
	clickLast := fmt.Sprintf(`(() => {
		const rows = document.querySelectorAll(%s);
		const link = [...rows[rows.length - 1].querySelectorAll("a")].find(a => a.textContent.trim() === "Delete");
		if (!link) return false;
		link.click();
		return true;
	})()`, jsString(rowSelector))

	var clicked, done bool
	if err := b.run(chromedp.Evaluate(clickLast, &clicked)); err != nil {
		return fmt.Errorf("delete last task: %w", err)
	}
	if !clicked {
		return fmt.Errorf("delete last task: row has no Delete link")
	}
	if err := b.run(
		chromedp.WaitVisible(confirmSelector, chromedp.ByQuery),
		chromedp.Click(confirmSelector, chromedp.NodeVisible),
		chromedp.Poll(listedAtMost(before-1), &done, chromedp.WithPollingTimeout(b.timeout)),
	); err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	return nil
}

// HasText reports whether any row contains text.
func (b *Browser) HasText(text string) (bool, error) {
	var found bool
	expr := fmt.Sprintf("[...document.querySelectorAll(%s)].some(r => r.textContent.includes(%s))",
		jsString(rowSelector), jsString(text))
	if err := b.run(chromedp.Evaluate(expr, &found)); err != nil {
		return false, fmt.Errorf("look for %q: %w", text, err)
	}
	return found, nil
}

// listedAtLeast and listedAtMost only hold on the list page, so they never
// match an intermediate page while navigation is in flight.
func listedAtLeast(n int) string {
	return fmt.Sprintf("document.querySelector(%s) !== null && document.querySelectorAll(%s).length >= %d",
		jsString(listSelector), jsString(rowSelector), n)
}

func listedAtMost(n int) string {
	return fmt.Sprintf("document.querySelector(%s) !== null && document.querySelectorAll(%s).length <= %d",
		jsString(listSelector), jsString(rowSelector), n)
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
