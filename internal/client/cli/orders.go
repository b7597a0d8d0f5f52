package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
)

var errInvalidPayload = errors.New("order must be a JSON document")

// PlaceOrder submits the order given as args, or read from the prompt when
// args are empty.
func (a *App) PlaceOrder(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		var err error
		text, err = ReadOrderDocument(a.reader, "Order JSON", a.out)
		if err != nil {
			return err
		}
	}
	if !json.Valid([]byte(text)) {
		fmt.Fprintln(a.out, "Order failed:", errInvalidPayload)
		return errInvalidPayload
	}

	res, err := a.orders.Submit(ctx, json.RawMessage(text))
	if err != nil {
		a.logger.Error(ctx, "order could not be saved", "error", err)
		fmt.Fprintln(a.out, "Order failed:", err)
		return err
	}

	if errors.Is(res.Err, client.ErrUnauthorized) {
		a.expireSession()
	}

	if res.OrderID != "" {
		fmt.Fprintf(a.out, "%s (%s)\n", res.Message(), res.OrderID)
	} else {
		fmt.Fprintln(a.out, res.Message())
	}
	return nil
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format(time.DateTime)
}

// ListOrders prints the queued orders with the given status, oldest first.
func (a *App) ListOrders(ctx context.Context, status models.OrderStatus) error {
	list, err := a.lister.GetOrdersByStatus(ctx, status)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(a.out, "No %s orders\n", status)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENQUEUED\tRETRIES\tLAST ERROR")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", o.ID, formatMillis(o.EnqueuedAt), o.RetryCount, o.LastError)
	}
	return tw.Flush()
}

func (a *App) Stats(ctx context.Context) error {
	st, err := a.queue.GetQueueStats(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Pending: %d  Synced: %d  Failed: %d  Total: %d\n", st.Pending, st.Synced, st.Failed, st.Total)
	return nil
}

// Sync replays the queue now. It refuses while orders cannot be delivered,
// so a manual sync never spends retries on an unreachable server.
func (a *App) Sync(ctx context.Context) error {
	if !a.delivery.Online() {
		fmt.Fprintln(a.out, "Offline: orders stay queued until the server is reachable and you are logged in online")
		return nil
	}

	sum, err := a.queue.SyncPendingOrders(ctx)
	if sum.AlreadySyncing {
		fmt.Fprintln(a.out, "Sync already in progress")
		return nil
	}
	if err != nil {
		fmt.Fprintln(a.out, "Sync stopped:", err)
		return err
	}

	fmt.Fprintf(a.out, "Attempted %d, synced %d, failed %d\n", sum.Attempted, sum.Synced, sum.Failed)
	for _, e := range sum.Errors {
		fmt.Fprintf(a.out, "  %s: %v\n", e.ID, e.Err)
	}
	return nil
}

func (a *App) ClearFailed(ctx context.Context) error {
	n, err := a.queue.ClearFailedOrders(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Removed %d failed orders\n", n)
	return nil
}

// Status prints connectivity, queue counters and whether a sync is running.
func (a *App) Status(ctx context.Context) error {
	st, err := a.queue.GetQueueStats(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return err
	}

	delivery := "paused"
	if a.delivery.Online() {
		delivery = "active"
	}
	fmt.Fprintf(a.out, "Mode: %s, delivery %s\n", a.mode(), delivery)
	fmt.Fprintf(a.out, "Pending: %d  Failed: %d\n", st.Pending, st.Failed)
	if a.queue.IsSyncing() {
		fmt.Fprintln(a.out, "Sync in progress")
	}
	if ls, ok := a.lastSync(ctx); ok {
		fmt.Fprintf(a.out, "Last sync: %s, %d synced, %d failed\n",
			ls.FinishedAt.Local().Format(time.DateTime), ls.Synced, ls.Failed)
	}
	return nil
}
