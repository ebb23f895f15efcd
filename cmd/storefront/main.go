// Command storefront is a terminal frontend for the storefront API. The cart is
// kept in a local mirror so a guest can shop before signing in; "sync" merges
// it into the server cart once STOREFRONT_TOKEN is set.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/pkg/storefront"
)

const usage = `usage: storefront <command> [flags]

commands:
  products [-limit n] [-skip n]   list the catalog
  product <id>                    show one product
  categories                      list categories
  category <name>                 list products in a category
  search <query>                  search the catalog
  cart                            show the cart
  add <id> [qty]                  add a product to the cart
  update <id> <qty>               set a line quantity (0 removes)
  remove <id>                     remove a line
  clear                           empty the cart
  sync                            merge the local cart into the server cart
  checkout -address .. -city .. -postal .. -country .. [-payment PayPal]
  orders                          list my orders
  order <id>                      show one order
  pay <id> -payment-id ..         mark an order paid
  deliver <id>                    mark an order delivered (admin)
`

type app struct {
	client *storefront.Client
	mirror *storefront.Mirror
	out    io.Writer
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func setup() (*app, error) {
	client, err := storefront.NewClient(getEnv("STOREFRONT_API", "http://localhost:5000/api"), 15*time.Second)
	if err != nil {
		return nil, err
	}
	client.SetToken(os.Getenv("STOREFRONT_TOKEN"))

	dir := os.Getenv("STOREFRONT_STATE_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "storefront")
	}
	mirror := storefront.NewMirror(storefront.FileStorage{Dir: dir})
	if err := mirror.Load(); err != nil {
		return nil, err
	}
	return &app{client: client, mirror: mirror, out: os.Stdout}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		limit := fs.Int("limit", product.DefaultLimit, "page size")
		skip := fs.Int("skip", 0, "offset")
		if err := fs.Parse(args); err != nil {
			return err
		}
		raw, err := a.client.Products(ctx, product.ListQuery{Limit: *limit, Skip: *skip})
		return a.print(raw, err)
	case "product":
		if len(args) != 1 {
			return errors.New("product <id>")
		}
		p, err := a.client.Product(ctx, args[0])
		return a.print(p, err)
	case "categories":
		raw, err := a.client.Categories(ctx)
		return a.print(raw, err)
	case "category":
		if len(args) != 1 {
			return errors.New("category <name>")
		}
		raw, err := a.client.ByCategory(ctx, args[0])
		return a.print(raw, err)
	case "search":
		if len(args) != 1 {
			return errors.New("search <query>")
		}
		raw, err := a.client.Search(ctx, args[0])
		return a.print(raw, err)

	case "cart":
		return a.showCart(ctx)
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("add <id> [qty]")
		}
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			qty = n
		}
		return a.add(ctx, args[0], qty)
	case "update":
		if len(args) != 2 {
			return errors.New("update <id> <qty>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		if a.client.HasToken() {
			return a.adopt(a.client.UpdateCartItem(ctx, args[0], qty))
		}
		return a.localDone(a.mirror.Update(args[0], qty))
	case "remove":
		if len(args) != 1 {
			return errors.New("remove <id>")
		}
		if a.client.HasToken() {
			return a.adopt(a.client.RemoveFromCart(ctx, args[0]))
		}
		return a.localDone(a.mirror.Remove(args[0]))
	case "clear":
		if a.client.HasToken() {
			if err := a.client.ClearCart(ctx); err != nil && !storefront.IsNotFound(err) {
				return err
			}
			return a.mirror.Adopt(nil)
		}
		return a.localDone(a.mirror.Clear())
	case "sync":
		if err := a.mirror.Reconcile(ctx, a.client); err != nil {
			return err
		}
		return a.showLocal()

	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		list, err := a.client.MyOrders(ctx)
		return a.print(list, err)
	case "order":
		if len(args) != 1 {
			return errors.New("order <id>")
		}
		o, err := a.client.Order(ctx, args[0])
		return a.print(o, err)
	case "pay":
		return a.pay(ctx, args)
	case "deliver":
		if len(args) != 1 {
			return errors.New("deliver <id>")
		}
		o, err := a.client.DeliverOrder(ctx, args[0])
		return a.print(o, err)

	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func (a *app) add(ctx context.Context, id string, qty int) error {
	if a.client.HasToken() {
		return a.adopt(a.client.AddToCart(ctx, id, qty))
	}
	p, err := a.client.Product(ctx, id)
	if err != nil {
		return err
	}
	return a.localDone(a.mirror.Add(storefront.LineFromProduct(p, qty)))
}

func (a *app) showCart(ctx context.Context) error {
	if !a.client.HasToken() {
		return a.showLocal()
	}
	if err := a.mirror.Reconcile(ctx, a.client); err != nil {
		return err
	}
	c, err := a.client.Cart(ctx)
	return a.print(c, err)
}

func (a *app) showLocal() error {
	return a.print(struct {
		Items  []cart.LineItem `json:"items"`
		Prices any             `json:"prices"`
		Synced bool            `json:"synced"`
	}{a.mirror.Items(), a.mirror.Prices(), a.mirror.Synced()}, nil)
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var addr order.ShippingAddress
	fs.StringVar(&addr.Address, "address", "", "street address")
	fs.StringVar(&addr.City, "city", "", "city")
	fs.StringVar(&addr.PostalCode, "postal", "", "postal code")
	fs.StringVar(&addr.Country, "country", "", "country")
	payment := fs.String("payment", "PayPal", "payment method")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.mirror.Reconcile(ctx, a.client); err != nil {
		return err
	}
	placed, err := a.mirror.Checkout(ctx, a.client, addr, *payment)
	return a.print(placed, err)
}

func (a *app) pay(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("pay <id> -payment-id ..")
	}
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	var p storefront.Payment
	fs.StringVar(&p.ID, "payment-id", "", "provider payment id")
	fs.StringVar(&p.Status, "status", "COMPLETED", "provider status")
	fs.StringVar(&p.Payer.EmailAddress, "email", "", "payer email")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	p.UpdateTime = time.Now().UTC().Format(time.RFC3339)
	o, err := a.client.PayOrder(ctx, args[0], p)
	return a.print(o, err)
}

func (a *app) adopt(c *cart.Cart, err error) error {
	if err != nil {
		return err
	}
	if err := a.mirror.Adopt(c.Items); err != nil {
		return err
	}
	return a.print(c, nil)
}

func (a *app) localDone(err error) error {
	if err != nil {
		return err
	}
	return a.showLocal()
}

func (a *app) print(v any, err error) error {
	if err != nil {
		return err
	}
	if raw, ok := v.(json.RawMessage); ok {
		var pretty any
		if json.Unmarshal(raw, &pretty) == nil {
			v = pretty
		}
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
