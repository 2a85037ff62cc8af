package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"asobibox/internal/service"

	"github.com/joho/godotenv"
)

// Mints a bearer token for the read-only admin API.
func main() {
	_ = godotenv.Load()

	subject := flag.String("subject", "ops", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	token, err := service.GenerateAdminToken(*subject, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
