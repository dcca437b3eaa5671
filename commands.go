package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/migrations"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the quote expiry scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, db, log)
			if err != nil {
				return err
			}
			if !quiet {
				printRoutes(a.router)
			}
			if err := a.scheduler.Start(cfg.QuoteExpiryCron); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           a.router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info("shutting down")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.scheduler.Stop(shutdownCtx)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print the route table")
	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and apply the SQL data migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			fmt.Println(color.GreenString("schema up to date"))
			if cfg.DBDriver != "postgres" {
				return nil
			}
			version, dirty, err := migrations.Version(cfg.DBURL)
			if err != nil {
				return err
			}
			state := color.GreenString("clean")
			if dirty {
				state = color.RedString("dirty")
			}
			fmt.Printf("sql migrations: version %d (%s)\n", version, state)
			return nil
		},
	}
}

func expireQuotesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "expire-quotes",
		Short: "Mark unanswered quotes past their validity as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			quotes := services.NewQuoteService(db, log, services.NewSettingsService(db, cfg.InvoicePrefix))
			n, err := quotes.ExpireOverdue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("expired %s quote(s)\n", color.YellowString("%d", n))
			return nil
		},
	}
}

func createUserCmd(configPath *string) *cobra.Command {
	var (
		in         services.CreateUserInput
		role       string
		customerID string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, typically the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			in.Role = models.Role(role)
			if customerID != "" {
				id, err := uuid.Parse(customerID)
				if err != nil {
					return fmt.Errorf("invalid --customer-id: %w", err)
				}
				in.CustomerID = &id
			}
			if in.Password == "" {
				in.Password = os.Getenv("REPAIRSHOP_PASSWORD")
			}

			user, err := services.NewAuthService(db).CreateUser(cmd.Context(), in)
			if err != nil {
				var se *services.Error
				if errors.As(err, &se) && len(se.Fields) > 0 {
					for field, msg := range se.Fields {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", color.RedString(field), msg)
					}
				}
				return err
			}
			fmt.Printf("%s %s (%s) %s\n", color.GreenString("created"), user.Email, user.Role, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (default $REPAIRSHOP_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, TECHNICIAN or CUSTOMER")
	cmd.Flags().StringVar(&customerID, "customer-id", "", "customer record for CUSTOMER accounts")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	return cmd
}

func genSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random value for JWT_SECRET",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(utils.GenerateJWTSecret())
		},
	}
}

func printRoutes(r *gin.Engine) {
	methods := map[string]func(format string, a ...interface{}) string{
		http.MethodGet:    color.CyanString,
		http.MethodPost:   color.GreenString,
		http.MethodPut:    color.YellowString,
		http.MethodDelete: color.RedString,
	}
	for _, route := range r.Routes() {
		paint, ok := methods[route.Method]
		if !ok {
			paint = fmt.Sprintf
		}
		fmt.Printf("%s %s\n", paint("%-6s", route.Method), route.Path)
	}
}
