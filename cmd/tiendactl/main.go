// Command tiendactl — консольный инструмент кассира и администратора каталога.
//
//	tiendactl login -email caja@mitienda.uy -password ...
//	tiendactl lookup A001
//	tiendactl status A001 paid
//	tiendactl products
//	tiendactl add-product -sku SKU001 -name Remera -price 10.00 -colors "Rojo, Azul"
//	tiendactl import products.json
//
// Токен хранится в том же локальном хранилище, что и у киоска (TIENDA_*).
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
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/admin"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/api"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/app"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/cashier"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

const envCashierPassword = "TIENDA_CASHIER_PASSWORD"

var errUsage = errors.New("usage: tiendactl <login|logout|lookup|status|products|add-product|update-product|import|health> [flags]")

// remoteAPI — операции API магазина, которые использует утилита.
type remoteAPI interface {
	domain.CashierAPI
	domain.CatalogAPI
	Health(ctx context.Context) error
}

type cli struct {
	cashier *cashier.Service
	admin   *admin.Service
	health  func(ctx context.Context) error
	getenv  func(string) string
	out     io.Writer
}

func newCLI(remote remoteAPI, credentials domain.CredentialStore, logger *log.Entry, out io.Writer) *cli {
	cashierSvc := cashier.NewService(remote, credentials, logger.WithField("component", "cashier"))
	return &cli{
		cashier: cashierSvc,
		admin:   admin.NewService(remote, cashierSvc, logger.WithField("component", "admin")),
		health:  remote.Health,
		getenv:  os.Getenv,
		out:     out,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if err := c.cashier.Logout(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(c.out, "sesión cerrada")
		return nil
	case "lookup":
		if len(rest) != 1 {
			return errors.New("usage: tiendactl lookup <code>")
		}
		order, err := c.cashier.LookupOrder(ctx, rest[0])
		if err != nil {
			return err
		}
		c.printOrder(order)
		return nil
	case "status":
		return c.status(ctx, rest)
	case "products":
		products, err := c.admin.ListProducts(ctx)
		if err != nil {
			return err
		}
		c.printProducts(products)
		return nil
	case "add-product":
		return c.addProduct(ctx, rest)
	case "update-product":
		return c.updateProduct(ctx, rest)
	case "import":
		return c.importProducts(ctx, rest)
	case "health":
		if err := c.health(ctx); err != nil {
			return fmt.Errorf("store api unavailable: %w", err)
		}
		_, _ = fmt.Fprintln(c.out, "store api ok")
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "cashier email")
	password := fs.String("password", "", "cashier password (fallback: "+envCashierPassword+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = c.getenv(envCashierPassword)
	}

	if err := c.cashier.Login(ctx, *email, *password); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(c.out, "sesión iniciada")
	return nil
}

func (c *cli) status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: tiendactl status <code> <pending|confirmed|paid|delivered|cancelled>")
	}
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(args[1])))
	if !status.Valid() {
		return domain.ErrStatusInvalid
	}

	order, err := c.cashier.LookupOrder(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := c.cashier.UpdateOrderStatus(ctx, order, status)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "pedido %s: %s → %s\n", updated.Code, order.Status.Label(), updated.Status.Label())
	return nil
}

func productFlags(name string) (*flag.FlagSet, *admin.ProductForm) {
	fs := newFlagSet(name)
	form := &admin.ProductForm{}
	fs.StringVar(&form.SKU, "sku", "", "product SKU")
	fs.StringVar(&form.Name, "name", "", "product name")
	fs.StringVar(&form.Price, "price", "", "unit price, e.g. 10.50")
	fs.StringVar(&form.Description, "description", "", "description")
	fs.StringVar(&form.Image, "image", "", "image URL")
	fs.StringVar(&form.Colors, "colors", "", "comma-separated colors")
	return fs, form
}

func (c *cli) addProduct(ctx context.Context, args []string) error {
	fs, form := productFlags("add-product")
	if err := fs.Parse(args); err != nil {
		return err
	}
	product, err := form.Product()
	if err != nil {
		return err
	}
	created, err := c.admin.CreateProduct(ctx, product)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "producto creado: %s (%s)\n", created.SKU, created.ID)
	return nil
}

func (c *cli) updateProduct(ctx context.Context, args []string) error {
	fs, form := productFlags("update-product")
	id := fs.String("id", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	product, err := form.Product()
	if err != nil {
		return err
	}
	if err := c.admin.UpdateProduct(ctx, *id, product); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "producto actualizado: %s\n", *id)
	return nil
}

// importProduct — запись JSON-файла импорта; цена — число или строка.
type importProduct struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Colors      []string        `json:"colors"`
}

func readImportFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var rows []importProduct
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.Product{
			SKU:         row.SKU,
			Name:        row.Name,
			Price:       row.Price,
			Description: row.Description,
			Image:       row.Image,
			Colors:      domain.ParseColors(strings.Join(row.Colors, ",")),
		})
	}
	return products, nil
}

func (c *cli) importProducts(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tiendactl import <products.json>")
	}
	products, err := readImportFile(args[0])
	if err != nil {
		return err
	}
	imported, err := c.admin.ImportProducts(ctx, products)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "productos importados: %d\n", imported)
	return nil
}

func (c *cli) printOrder(order domain.Order) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Pedido\t%s\n", order.Code)
	_, _ = fmt.Fprintf(w, "Estado\t%s\n", order.Status.Label())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "SKU\tProducto\tColor\tCant.\tPrecio\tLista")
	for _, item := range order.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			item.SKU, item.Name, item.Color, item.Quantity, item.Price.StringFixed(2), item.ListType)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Subtotal\t%s\n", order.Subtotal.StringFixed(2))
	_ = w.Flush()
}

func (c *cli) printProducts(products []domain.Product) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSKU\tNombre\tPrecio\tColores")
	for _, p := range products {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.SKU, p.Name, p.Price.StringFixed(2), strings.Join(p.Colors, ", "))
	}
	_ = w.Flush()
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := app.LoadConfig()
	if err != nil {
		fail("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.WithField("component", "tiendactl")
	store, err := app.OpenLocalStore(ctx, cfg, logger)
	if err != nil {
		fail("open local store: %v", err)
	}

	remote := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.APITimeout), api.WithLogger(logger))
	err = newCLI(remote, store, logger, os.Stdout).run(ctx, os.Args[1:])
	_ = store.Close()
	if err != nil {
		fail("%v", err)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
