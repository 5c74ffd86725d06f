// Command board is a terminal preparation board. It loads a menu's
// baseline over HTTP, then follows the relay and redraws on every event.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/logger"
	"github.com/carte-app/api/internal/reconciler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	baseURL := pflag.String("url", "http://localhost:8080", "API base URL")
	menuID := pflag.Int64("menu", 0, "menu ID")
	password := pflag.String("password", "", "menu admin password (or $BOARD_PASSWORD)")
	token := pflag.String("token", "", "admin token; skips login")
	search := pflag.StringP("search", "s", "", "only show orders matching customer or item name")
	logLevel := pflag.String("log-level", "warn", "log level")
	pflag.Parse()

	if err := logger.Setup(*logLevel, "text", os.Stderr); err != nil {
		logrus.WithError(err).Fatal("setup logger")
	}
	if *menuID <= 0 {
		logrus.Fatal("--menu is required")
	}
	if *password == "" {
		*password = os.Getenv("BOARD_PASSWORD")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := follow(ctx, *baseURL, *menuID, *password, *token, *search, os.Stdout); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Fatal("board stopped")
	}
}

func follow(ctx context.Context, baseURL string, menuID int64, password, token, search string, out io.Writer) error {
	hc := &http.Client{Timeout: 10 * time.Second}
	if token == "" {
		var err error
		if token, err = reconciler.Login(ctx, hc, baseURL, menuID, password); err != nil {
			return err
		}
	}

	seed, err := reconciler.FetchSnapshot(ctx, hc, baseURL, menuID, token)
	if err != nil {
		return err
	}

	wsURL := "ws" + strings.TrimPrefix(strings.TrimSuffix(baseURL, "/"), "http") + fmt.Sprintf("/ws/menus/%d", menuID)
	client, err := reconciler.Dial(ctx, wsURL, seed)
	if err != nil {
		return err
	}
	defer client.Close()

	render(out, reconciler.BuildBoard(seed, search))
	client.OnChange(func(s reconciler.Snapshot, _ event.Message) {
		render(out, reconciler.BuildBoard(s, search))
	})
	return client.Run(ctx)
}

// render writes the board as plain text, one column per status.
func render(w io.Writer, b reconciler.Board) {
	fmt.Fprint(w, "\033[H\033[2J")
	st := b.Stats
	fmt.Fprintf(w, "orders %d  pending %d  in progress %d  completed %d  done %s%%\n\n",
		st.Total, st.Pending, st.InProgress, st.Completed, st.CompletionRate.StringFixed(2))

	section(w, "PENDING", b.Pending)
	section(w, "IN PROGRESS", b.InProgress)
	section(w, "COMPLETED", b.Completed)

	if ingredients := st.SortedIngredients(); len(ingredients) > 0 {
		fmt.Fprintln(w, "TO PREPARE")
		for _, in := range ingredients {
			fmt.Fprintf(w, "  %3d x %s\n", in.Quantity, in.Name)
		}
	}
}

func section(w io.Writer, title string, orders []event.Order) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(orders))
	for _, o := range orders {
		lines := make([]string, len(o.Items))
		for i, l := range o.Items {
			lines[i] = fmt.Sprintf("%d x %s", l.Quantity, l.Item.Name)
		}
		fmt.Fprintf(w, "  #%-5d %-16s %s\n", o.ID, o.UserName, strings.Join(lines, ", "))
	}
	fmt.Fprintln(w)
}
