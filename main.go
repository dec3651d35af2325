// Package main package rental API.
//
// @title           Package Rental API
// @version         1.0
// @description     Rental package inventory, redemption codes and customer notifications.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"pkgrental/app/echoServer"
	authctrl "pkgrental/app/echoServer/controller/auth"
	customerctrl "pkgrental/app/echoServer/controller/customer"
	inventoryctrl "pkgrental/app/echoServer/controller/inventory"
	redeemctrl "pkgrental/app/echoServer/controller/redeem"
	webhookctrl "pkgrental/app/echoServer/controller/webhook"
	"pkgrental/app/echoServer/validation"
	"pkgrental/config"
	customerrepo "pkgrental/repository/customer"
	emaillogrepo "pkgrental/repository/emaillog"
	inventoryrepo "pkgrental/repository/inventory"
	"pkgrental/repository/mailer"
	qrcoderepo "pkgrental/repository/qrcode"
	authsvc "pkgrental/service/auth"
	customersvc "pkgrental/service/customer"
	"pkgrental/service/ingest"
	inventorysvc "pkgrental/service/inventory"
	"pkgrental/service/notify"
	qrcodesvc "pkgrental/service/qrcode"
	redeemsvc "pkgrental/service/redeem"
	"pkgrental/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	cr := customerrepo.New(db)
	ir := inventoryrepo.New(db)
	qr := qrcoderepo.New(db)
	lr := emaillogrepo.New(db)
	mr := mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}, log)

	// services
	ns := notify.New(cr, qr, lr, mr, log)
	is := inventorysvc.New(db, ir, ns)
	qs := qrcodesvc.New(db, qr)
	rs := redeemsvc.New(qr, cr, is)
	gs := ingest.New(cr, is, qs, ns)
	cs := customersvc.New(db, cr, ir, qr, lr)
	as := authsvc.New(authsvc.Credentials{
		AdminUser: cfg.AdminUser,
		AdminPass: cfg.AdminPass,
		StaffUser: cfg.StaffUser,
		StaffPass: cfg.StaffPass,
	}, cfg.JWTSecret)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	webhookC := &webhookctrl.Controller{Svc: gs, V: v, Log: log}
	redeemC := &redeemctrl.Controller{Svc: rs, Log: log}
	customerC := &customerctrl.Controller{Svc: cs, V: v, Log: log}
	inventoryC := &inventoryctrl.Controller{Svc: is, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Webhook:   webhookC,
		Redeem:    redeemC,
		Customer:  customerC,
		Inventory: inventoryC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
