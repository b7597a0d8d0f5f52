package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	PlaceOrder(ctx context.Context, args []string) error
	ListOrders(ctx context.Context, status models.OrderStatus) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
	ClearFailed(ctx context.Context) error
	Status(ctx context.Context) error
}

// loginRequired lists commands that act on behalf of a signed-in operator.
var loginRequired = map[string]bool{
	"order":       true,
	"sync":        true,
	"clearfailed": true,
	"logout":      true,
}

// runREPL reads commands line by line and dispatches them to a. It returns
// on scanner EOF, on "exit"/"quit", or when ctx is cancelled.
//
//	help                 show available commands
//	login                sign in (offline fallback when the server is down)
//	order [json]         place an order; without an argument the JSON is prompted for
//	pending | failed     list queued orders by status
//	list [status]        list orders with status pending, synced or failed
//	stats                queue counters
//	sync                 replay pending orders now
//	clearfailed          archive and remove orders that ran out of retries
//	status               connectivity and queue summary
//	whoami               current operator
//	logout               forget the current session
//	exit | quit          leave the program
//
// Errors returned by handlers are ignored here; handlers report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pos %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if loginRequired[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: order, pending, failed, list, stats, sync, clearfailed, status, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, pending, failed, list, stats, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "order":
			_ = a.PlaceOrder(ctx, args)

		case "pending":
			_ = a.ListOrders(ctx, models.OrderStatusPending)

		case "failed":
			_ = a.ListOrders(ctx, models.OrderStatusFailed)

		case "list":
			status := models.OrderStatusPending
			if len(args) > 0 {
				st, err := models.ParseOrderStatus(args[0])
				if err != nil {
					printlnFn(err.Error())
					continue
				}
				status = st
			}
			_ = a.ListOrders(ctx, status)

		case "stats":
			_ = a.Stats(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "clearfailed":
			_ = a.ClearFailed(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
