// Command sprig is the terminal client for the plant marketplace:
// browse the store, manage the local cart, check out, and poke at
// favorites, people, and garden weather.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sprigapp/sprig/internal/auth"
	cartapp "github.com/sprigapp/sprig/internal/cart/app"
	cartkv "github.com/sprigapp/sprig/internal/cart/infra/kv"
	checkoutapp "github.com/sprigapp/sprig/internal/checkout/app"
	checkoutadapter "github.com/sprigapp/sprig/internal/checkout/infra/adapter"
	favoritesapp "github.com/sprigapp/sprig/internal/favorites/app"
	favoritesrest "github.com/sprigapp/sprig/internal/favorites/rest"
	plantsrest "github.com/sprigapp/sprig/internal/plants/rest"
	"github.com/sprigapp/sprig/pkg/config"
	"github.com/sprigapp/sprig/pkg/kvstore"
	"github.com/sprigapp/sprig/pkg/logger"
	"github.com/sprigapp/sprig/pkg/rest"
	"github.com/sprigapp/sprig/pkg/shutdown"
)

const usage = `usage: sprig <command> [args]

commands:
  plants                     list plants for sale
  cart ls                    show the cart and total
  cart add <plant-id> [-qty n]
  cart rm <plant-id>
  cart clear
  checkout                   buy everything in the cart
  login <email> <password>
  register <name> <email> <password>
  logout
  favorites [toggle <plant-id>]
  people [<user-id>]
  weather <city>
  photo <file>               upload a profile photo
`

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "sprig",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  "text",
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	if err := app.run(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("bad usage")

type app struct {
	cfg config.Config

	session  *auth.Session
	authSvc  *auth.Service
	authAPI  *auth.Client
	cart     *cartapp.Service
	checkout *checkoutapp.Service
	plants   *plantsrest.Client
	favAPI   *favoritesrest.Client
	api      *rest.Client
}

func newApp(cfg config.Config) (*app, error) {
	kv, err := kvstore.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	session := auth.NewSession(kv)

	api, err := rest.New(cfg.API, rest.WithTokenSource(session))
	if err != nil {
		return nil, err
	}

	plants := plantsrest.NewClient(api)
	cartSvc := cartapp.NewService(cartkv.NewCartStore(kv, nil))
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceAccess(cartSvc),
		checkoutadapter.NewPlantBuyer(plants),
		nil,
		cfg.HTTPTimeout,
	)
	authAPI := auth.NewClient(api)

	return &app{
		cfg:      cfg,
		session:  session,
		authSvc:  auth.NewService(authAPI, session),
		authAPI:  authAPI,
		cart:     cartSvc,
		checkout: checkoutSvc,
		plants:   plants,
		favAPI:   favoritesrest.NewClient(api),
		api:      api,
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "plants":
		return a.cmdPlants(ctx)
	case "cart":
		return a.cmdCart(ctx, args)
	case "checkout":
		return a.cmdCheckout(ctx)
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.authSvc.Logout(ctx)
	case "favorites":
		return a.cmdFavorites(ctx, args)
	case "people":
		return a.cmdPeople(ctx, args)
	case "weather":
		return a.cmdWeather(ctx, args)
	case "photo":
		return a.cmdPhoto(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) cmdPlants(ctx context.Context) error {
	cat, err := a.plants.Browse(ctx)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(cat.Categories))
	for _, c := range cat.Categories {
		names[c.ID] = c.Name
	}

	for _, p := range cat.Plants {
		label := ""
		if len(p.CategoryIDs) > 0 {
			label = names[p.CategoryIDs[0]]
		}
		fmt.Printf("%-26s  $%7.2f  stock %-3d  %-12s  %s\n",
			p.Name, p.Price, p.StockCount, label, p.ID)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"ls"}
	}

	switch args[0] {
	case "ls":
		items, err := a.cart.Items(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Your cart is empty.")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%-26s  $%.2f x %d  %s\n", it.Name, it.Price, it.Qty, it.ID)
		}
		total, err := a.cart.Total(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Total: $%.2f\n", total)
		return nil

	case "add":
		fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
		qty := fs.Int("qty", 1, "quantity")
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 1 {
			return errUsage
		}

		plant, err := a.plants.Get(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		cart, err := a.cart.Add(ctx, cartapp.Candidate{
			ID:          plant.ID,
			Name:        plant.Name,
			Description: plant.Description,
			Price:       plant.Price,
			Image:       a.plants.ImageURL(plant),
			Qty:         *qty,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added to cart (%d items).\n", len(cart.Items))
		return nil

	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		_, err := a.cart.Remove(ctx, args[1])
		return err

	case "clear":
		return a.cart.Clear(ctx)

	default:
		return errUsage
	}
}

func (a *app) cmdCheckout(ctx context.Context) error {
	sum, err := a.checkout.PurchaseAll(ctx)
	if errors.Is(err, checkoutapp.ErrEmptyCart) {
		fmt.Println("Your cart is empty. Add a plant first.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(sum.Message)
	for _, f := range sum.Failed() {
		fmt.Printf("  failed: %s (%s)\n", f.ID, f.Message)
	}
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	user, err := a.authSvc.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", user.Name)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	user, err := a.authSvc.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s.\n", user.Name)
	return nil
}

func (a *app) cmdFavorites(ctx context.Context, args []string) error {
	user, ok, err := a.session.User(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return favoritesapp.ErrNotSignedIn
	}

	svc := favoritesapp.NewService(a.favAPI, user.ID)
	if err := svc.Refresh(ctx); err != nil {
		return err
	}

	if len(args) == 2 && args[0] == "toggle" {
		plant, err := a.plants.Get(ctx, args[1])
		if err != nil {
			return err
		}
		fav, err := svc.Toggle(ctx, plant)
		if err != nil {
			return err
		}
		if fav {
			fmt.Printf("%s added to favorites.\n", plant.Name)
		} else {
			fmt.Printf("%s removed from favorites.\n", plant.Name)
		}
		return nil
	}
	if len(args) != 0 {
		return errUsage
	}

	for _, p := range svc.List() {
		fmt.Printf("%-26s  $%.2f  %s\n", p.Name, p.Price, p.ID)
	}
	return nil
}

func (a *app) cmdWeather(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if a.cfg.WeatherAPIKey == "" {
		return errors.New("set SPRIG_WEATHER_KEY to use the weather command")
	}
	return printWeather(ctx, a.cfg.WeatherAPIKey, args[0])
}

func (a *app) cmdPhoto(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	user, ok, err := a.session.User(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("sign in before uploading a photo")
	}
	return uploadPhoto(ctx, a.authAPI, user.ID, args[0])
}
