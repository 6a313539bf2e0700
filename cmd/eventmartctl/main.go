package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/polkiloo/eventmart/internal/server/http/dto"
)

const (
	exitPartial = 2
	exitFailed  = 3
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	var client *apiClient

	return &cli.App{
		Name:  "eventmartctl",
		Usage: "Drive the local eventmart API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "local API base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"EVENTMART_ADDR"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: 30 * time.Second,
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			client, err = newAPIClient(c.String("addr"), &http.Client{Timeout: c.Duration("timeout")})
			return err
		},
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and store the session in the running service",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"EVENTMART_PASSWORD"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					var resp dto.SessionResponse
					if _, err := client.do(c.Context, http.MethodPost, "/api/session",
						dto.LoginRequest{Email: c.String("email"), Password: c.String("password")}, &resp); err != nil {
						return err
					}
					fmt.Fprintf(out, "signed in as %s\n", resp.CustomerID)
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "end the current session",
				Action: func(c *cli.Context) error {
					_, err := client.do(c.Context, http.MethodDelete, "/api/session", nil, nil)
					return err
				},
			},
			{
				Name:  "whoami",
				Usage: "show the signed-in customer",
				Action: func(c *cli.Context) error {
					var resp dto.SessionResponse
					if _, err := client.do(c.Context, http.MethodGet, "/api/session", nil, &resp); err != nil {
						return err
					}
					fmt.Fprintln(out, resp.CustomerID)
					return nil
				},
			},
			{
				Name:  "checkout",
				Usage: "submit a cart",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "cart", Usage: "JSON cart file", Required: true},
				},
				Action: func(c *cli.Context) error {
					raw, err := os.ReadFile(c.Path("cart"))
					if err != nil {
						return err
					}
					var cart dto.CheckoutRequest
					if err := json.Unmarshal(raw, &cart); err != nil {
						return fmt.Errorf("parse cart: %w", err)
					}
					return checkoutReport(c, out, client, "/api/checkout", cart)
				},
			},
			{
				Name:      "retry",
				Usage:     "resubmit the failed items of a checkout attempt",
				ArgsUsage: "<attempt_id>",
				Action: func(c *cli.Context) error {
					attemptID, err := requireArg(c, 0, "attempt_id")
					if err != nil {
						return err
					}
					return checkoutReport(c, out, client, "/api/checkout/retry", dto.RetryCheckoutRequest{AttemptID: attemptID})
				},
			},
			{
				Name:  "orders",
				Usage: "list master orders",
				Action: func(c *cli.Context) error {
					var orders []dto.OrderResponse
					if _, err := client.do(c.Context, http.MethodGet, "/api/orders", nil, &orders); err != nil {
						return err
					}
					return printJSON(out, orders)
				},
			},
			{
				Name:      "delete-sub-order",
				Usage:     "remove a sub-order that is awaiting approval or rejected",
				ArgsUsage: "<order_id> <sub_order_id>",
				Action: func(c *cli.Context) error {
					orderID, err := requireArg(c, 0, "order_id")
					if err != nil {
						return err
					}
					subOrderID, err := requireArg(c, 1, "sub_order_id")
					if err != nil {
						return err
					}
					var resp dto.DeleteSubOrderResponse
					if _, err := client.do(c.Context, http.MethodDelete,
						"/api/orders/"+orderID+"/sub-orders/"+subOrderID, nil, &resp); err != nil {
						return err
					}
					return printJSON(out, resp)
				},
			},
			{
				Name:  "pay",
				Usage: "settle an approved order",
				Subcommands: []*cli.Command{
					{
						Name:      "cod",
						Usage:     "confirm cash on delivery",
						ArgsUsage: "<order_id>",
						Action: func(c *cli.Context) error {
							orderID, err := requireArg(c, 0, "order_id")
							if err != nil {
								return err
							}
							var resp dto.CashOnDeliveryResponse
							if _, err := client.do(c.Context, http.MethodPost, "/api/orders/"+orderID+"/payments/cod", nil, &resp); err != nil {
								return err
							}
							return printJSON(out, resp)
						},
					},
					{
						Name:      "online",
						Usage:     "open an online payment",
						ArgsUsage: "<order_id>",
						Action: func(c *cli.Context) error {
							orderID, err := requireArg(c, 0, "order_id")
							if err != nil {
								return err
							}
							var resp dto.PaymentIntentResponse
							if _, err := client.do(c.Context, http.MethodPost, "/api/orders/"+orderID+"/payments/online", nil, &resp); err != nil {
								return err
							}
							return printJSON(out, resp)
						},
					},
					{
						Name:      "verify",
						Usage:     "forward the payment widget callback",
						ArgsUsage: "<order_id>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "gateway-ref", Required: true},
							&cli.StringFlag{Name: "payment-ref", Required: true},
							&cli.StringFlag{Name: "signature", Required: true},
						},
						Action: func(c *cli.Context) error {
							orderID, err := requireArg(c, 0, "order_id")
							if err != nil {
								return err
							}
							var resp dto.SettlementResponse
							if _, err := client.do(c.Context, http.MethodPost, "/api/orders/"+orderID+"/payments/online/verify",
								dto.VerifyPaymentRequest{
									GatewayOrderRef: c.String("gateway-ref"),
									PaymentRef:      c.String("payment-ref"),
									Signature:       c.String("signature"),
								}, &resp); err != nil {
								return err
							}
							return printJSON(out, resp)
						},
					},
				},
			},
			{
				Name:      "settlement",
				Usage:     "show settlement tracking for an order",
				ArgsUsage: "<order_id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "wait", Usage: "poll until the order leaves the pending state"},
					&cli.DurationFlag{Name: "interval", Value: 2 * time.Second},
				},
				Action: func(c *cli.Context) error {
					orderID, err := requireArg(c, 0, "order_id")
					if err != nil {
						return err
					}
					for {
						var resp dto.SettlementResponse
						if _, err := client.do(c.Context, http.MethodGet, "/api/orders/"+orderID+"/settlement", nil, &resp); err != nil {
							return err
						}
						if !c.Bool("wait") || resp.State != "pending" {
							return printJSON(out, resp)
						}
						select {
						case <-c.Context.Done():
							return c.Context.Err()
						case <-time.After(c.Duration("interval")):
						}
					}
				},
			},
		},
	}
}

// checkoutReport prints the per-item report and exits non-zero unless every
// item was committed.
func checkoutReport(c *cli.Context, out io.Writer, client *apiClient, p string, in any) error {
	var report dto.CheckoutResponse
	status, err := client.do(c.Context, http.MethodPost, p, in, &report,
		http.StatusOK, http.StatusMultiStatus, http.StatusBadGateway)
	if err != nil {
		return err
	}
	if report.AttemptID == "" {
		return &apiError{Status: status, Body: dto.ErrorResponse{Error: "upstream_rejected"}}
	}
	if err := printJSON(out, report); err != nil {
		return err
	}

	switch status {
	case http.StatusMultiStatus:
		return cli.Exit(fmt.Sprintf("checkout partially completed; retry with: eventmartctl retry %s", report.AttemptID), exitPartial)
	case http.StatusBadGateway:
		return cli.Exit(fmt.Sprintf("checkout failed for every item; retry with: eventmartctl retry %s", report.AttemptID), exitFailed)
	}
	return nil
}

func requireArg(c *cli.Context, i int, name string) (string, error) {
	v := c.Args().Get(i)
	if v == "" {
		return "", cli.Exit("missing argument <"+name+">", 1)
	}
	return v, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
