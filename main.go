package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/storefront/internal/app"
)

// @title           Storefront Accounts API
// @version         1.0
// @description     Storefront login by phone OTP or email and password, plus OTP settings administration.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @server          https://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()
	wait := application.Start()
	<-wait

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx)
}
