package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"storefront/config"
	"storefront/fixtures"
	"storefront/pkg/app"
	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/remote"
	"storefront/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	application := &cli.App{
		Name:  "storefront",
		Usage: "coffee storefront client engine and development backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server-url", Value: cfg.ServerURL, Usage: "personalization backend base URL"},
			&cli.StringFlag{Name: "catalog-url", Value: cfg.CatalogURL, Usage: "catalog API URL"},
		},
		Commands: []*cli.Command{
			serveDevCommand(),
			browseCommand(cfg),
			wishlistCommand(cfg),
			orderCommand(cfg),
		},
	}

	if err := application.Run(os.Args); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func serveDevCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve-dev",
		Usage: "run an in-memory personalization backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080"},
			&cli.StringFlag{Name: "fixtures", Value: "fixtures.json", Usage: "seed file, rewritten on every change"},
			&cli.Float64Flag{Name: "rate", Value: 20, Usage: "requests per second per client, 0 disables"},
			&cli.IntFlag{Name: "burst", Value: 40},
		},
		Action: func(c *cli.Context) error {
			fixturesPath := c.String("fixtures")
			data, err := fixtures.Load(fixturesPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return errors.Wrap(err, "failed to load fixtures")
				}
				log.Warn("Fixtures file not found, starting with the default catalog.")
				data = fixtures.Default()
			}

			backend, err := transport.NewBackend(data, transport.NewBcryptPasswordManager(bcrypt.DefaultCost))
			if err != nil {
				return err
			}

			addr := c.String("addr")
			log.WithFields(log.Fields{"url": addr}).Info("Starting server")

			killSignalChan := getKillSignalChan()
			srv := startServer(addr, transport.Router(backend, transport.Options{
				FixturesPath:      fixturesPath,
				RequestsPerSecond: c.Float64("rate"),
				Burst:             c.Int("burst"),
			}))

			waitForKillSignalChan(killSignalChan)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func browseCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "print the Home feed, optionally as a signed-in user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username"},
			&cli.StringFlag{Name: "password"},
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, cfg)
			if err != nil {
				return err
			}
			if err := signIn(c, engine); err != nil {
				return err
			}

			home, err := engine.EnterHome()
			if err != nil {
				return err
			}
			waitFor(engine, model.StackHome)

			popular, err := home.Popular()
			if err != nil {
				return errors.New(model.UserMessage(err))
			}
			fmt.Println("Popular:")
			printItems(popular)
			if notice := home.PreferenceNotice(); notice != "" {
				fmt.Println(notice)
				return nil
			}
			fmt.Println("For you:")
			printItems(home.Preferences())
			return nil
		},
	}
}

func wishlistCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "wishlist",
		Usage: "toggle a catalog item on the user's wishlist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "item", Required: true},
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, cfg)
			if err != nil {
				return err
			}
			if err := signIn(c, engine); err != nil {
				return err
			}

			item, err := findItem(c, engine, model.ItemID(c.String("item")))
			if err != nil {
				return err
			}
			details, err := engine.OpenDetails(model.StackHome, item)
			if err != nil {
				return err
			}
			details.Scope().Wait()

			outcome, err := details.ToggleWishlist(c.Context)
			if err != nil {
				return errors.New(model.UserMessage(err))
			}
			fmt.Printf("%s: %s (in wishlist: %t)\n", item.Name, outcome, details.InWishlist())
			return nil
		},
	}
}

func orderCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "order",
		Usage: "add an item to the cart and check out",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "item", Required: true},
			&cli.IntFlag{Name: "quantity", Value: 1},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "address", Required: true},
			&cli.StringFlag{Name: "city", Required: true},
			&cli.StringFlag{Name: "province", Value: model.DefaultProvince},
			&cli.StringFlag{Name: "postal-code", Required: true},
			&cli.StringFlag{Name: "payment", Value: string(model.CreditCard)},
		},
		Action: func(c *cli.Context) error {
			engine, err := newEngine(c, cfg)
			if err != nil {
				return err
			}

			item, err := findItem(c, engine, model.ItemID(c.String("item")))
			if err != nil {
				return err
			}
			engine.Cart().Add(item, c.Int("quantity"))

			checkout, err := engine.OpenCheckout()
			if err != nil {
				return err
			}
			form := model.NewCheckoutForm()
			form.Name = c.String("name")
			form.AddressLine1 = c.String("address")
			form.City = c.String("city")
			form.Province = c.String("province")
			form.PostalCode = c.String("postal-code")
			form.PaymentMethod = model.PaymentMethod(c.String("payment"))

			summary, err := checkout.Review(form)
			if err != nil {
				return errors.New(model.UserMessage(err))
			}
			for _, line := range summary.Lines {
				fmt.Printf("%-24s x%d  %s\n", line.Name, line.Quantity, model.FormatPrice(line.Subtotal()))
			}

			confirmation, err := checkout.Confirm()
			if err != nil {
				return err
			}
			fmt.Printf("Total: %s\n%s (order %s)\n", model.FormatPrice(summary.Total), service.ThankYouMessage, confirmation.OrderID)
			return nil
		},
	}
}

func newEngine(c *cli.Context, cfg *config.Config) (*app.Engine, error) {
	logger := log.StandardLogger()
	client, err := remote.NewClient(remote.Config{BaseURL: c.String("server-url"), Timeout: cfg.Timeout}, logger)
	if err != nil {
		return nil, err
	}
	catalog, err := remote.NewCatalogClient(remote.Config{BaseURL: c.String("catalog-url"), Timeout: cfg.Timeout}, logger)
	if err != nil {
		return nil, err
	}
	return app.NewEngine(c.Context, client, catalog, app.Options{PopularLimit: cfg.PopularLimit}, logger), nil
}

func signIn(c *cli.Context, engine *app.Engine) error {
	if c.String("username") == "" {
		return nil
	}
	login, err := engine.EnterLogin()
	if err != nil {
		return err
	}
	if err := login.Submit(c.Context, c.String("username"), c.String("password")); err != nil {
		return errors.New(login.Message())
	}
	return nil
}

func findItem(c *cli.Context, engine *app.Engine, id model.ItemID) (model.CatalogItem, error) {
	explore, err := engine.EnterExplore()
	if err != nil {
		return model.CatalogItem{}, err
	}
	waitFor(engine, model.StackExplore)

	items, err := explore.Items()
	if err != nil {
		return model.CatalogItem{}, errors.New(model.UserMessage(err))
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return model.CatalogItem{}, errors.Errorf("item %s is not in the catalog", id)
}

func waitFor(engine *app.Engine, stack model.StackID) {
	if scope, err := engine.Navigator().RootScope(stack); err == nil {
		scope.Wait()
	}
}

func printItems(items []model.CatalogItem) {
	for _, item := range items {
		fmt.Printf("  [%s] %-24s %8s  %s\n", item.ID, item.Name, model.FormatPrice(item.Price), item.RoastLevel.Label())
	}
}

func startServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
