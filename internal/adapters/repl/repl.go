package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"erp-backend/internal/adapters/cli"
	"erp-backend/internal/app"
)

var errExit = errors.New("exit")

// session bundles what every command handler needs.
type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

func (s *session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	raw, err := s.reader.ReadString('\n')
	if err != nil && raw == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// Run starts the interactive loop. Lines start with a slash; anything the
// session does not handle itself is passed to the one-shot CLI commands, so
// "/stock 10" behaves like "app stock 10". Run returns when the reader is
// exhausted or the user types /exit.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	s := &session{ctx: ctx, svc: svc, reader: reader, out: out}

	fmt.Fprintln(out, "ERP console")
	fmt.Fprintln(out, "Type /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		input, ok := s.prompt("\n> ")
		if !ok {
			return
		}
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Fprintln(out, "Commands start with '/'. Type /help for the list.")
			continue
		}
		if err := s.dispatch(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "new-order":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /new-order <customer name>")
			return nil
		}
		return s.newSalesOrder(strings.Join(args, " "))

	case "new-po":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /new-po <supplier name>")
			return nil
		}
		return s.newPurchaseOrder(strings.Join(args, " "))

	case "order":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /order <order-ref>")
			return nil
		}
		order, err := s.svc.GetSalesOrder(s.ctx, args[0])
		if err != nil {
			return err
		}
		cli.PrintSalesOrder(s.out, order)

	case "cancel":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /cancel <order-ref>")
			return nil
		}
		order, err := s.svc.UpdateSalesOrderStatus(s.ctx, args[0], app.StatusRequest{Status: "Cancelled"})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Order %s cancelled. Reserved stock returned.\n", order.OrderNumber)

	case "receive":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /receive <po-ref>")
			return nil
		}
		po, err := s.svc.UpdatePurchaseOrderStatus(s.ctx, args[0], app.StatusRequest{Status: "Received"})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Purchase order %s received. Stock and average cost updated.\n", po.PONumber)

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "q":
		return errExit

	default:
		// validate and post read JSON from the same reader.
		return cli.Run(s.ctx, s.svc, append([]string{cmd}, args...), s.reader, s.out)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Interactive:")
	fmt.Fprintln(out, "  /new-order <customer>        enter a sales order line by line")
	fmt.Fprintln(out, "  /new-po <supplier>           enter a purchase order line by line")
	fmt.Fprintln(out, "  /order <ref>                 show one sales order")
	fmt.Fprintln(out, "  /cancel <ref>                cancel a sales order")
	fmt.Fprintln(out, "  /receive <po-ref>            mark a purchase order Received")
	fmt.Fprintln(out, "  /exit                        leave the console")
	fmt.Fprintln(out, "Reports and listings:")
	fmt.Fprintln(out, "  /products  /stock [threshold]  /orders [status]  /purchase-orders [status]")
	fmt.Fprintln(out, "  /order-status <ref> <status>  /po-status <ref> <status>")
	fmt.Fprintln(out, "  /sales-report [from] [to] [group_by]  /purchase-report [from] [to]  /bal [date]")
	fmt.Fprintln(out, "  /validate  /post             read one JSON journal entry from the next line")
	fmt.Fprintln(out, "  /seed                        load demo data into an empty store")
}
