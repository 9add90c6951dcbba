package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"vendas-backend/config"
	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

const usage = "expected one of the subcommands: seed-products, add-user, purge-tokens, gen-secret"

func main() {
	seedCmd := flag.NewFlagSet("seed-products", flag.ExitOnError)
	dryRun := seedCmd.Bool("dry-run", false, "Show what would be imported without actually importing")

	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	role := addUserCmd.String("role", models.RoleSeller, "Role: admin or seller")
	email := addUserCmd.String("email", "", "Email for the new user")

	purgeCmd := flag.NewFlagSet("purge-tokens", flag.ExitOnError)

	secretCmd := flag.NewFlagSet("gen-secret", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	_ = godotenv.Load()

	switch os.Args[1] {
	case "seed-products":
		seedCmd.Parse(os.Args[2:])
		seedProducts(*dryRun)
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		if !models.ValidRole(*role) {
			fmt.Println("role must be admin or seller")
			os.Exit(1)
		}
		createUser(*username, *password, *role, *email)
	case "purge-tokens":
		purgeCmd.Parse(os.Args[2:])
		purgeTokens()
	case "gen-secret":
		secretCmd.Parse(os.Args[2:])
		secret, err := utils.NewJWTSecret()
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Printf("JWT_SECRET=%s\n", secret)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openDB() (*config.Config, *gorm.DB) {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before server
	if err := config.Migrate(db); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}
	return cfg, db
}

func seedProducts(dryRun bool) {
	var db *gorm.DB
	if !dryRun {
		_, db = openDB()
		defer config.CloseDB(db)
	}

	res, err := services.SeedProducts(db, services.InitialProducts, dryRun, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	if !dryRun {
		fmt.Printf("\nProducts created: %d, already present: %d\n", res.Created, res.Skipped)
	}
}

func createUser(username, password, role, email string) {
	cfg, db := openDB()
	defer config.CloseDB(db)
	utils.BcryptCost = cfg.Auth.BcryptCost

	user := models.User{
		Username: strings.TrimSpace(username),
		Password: password, // hashed in BeforeCreate
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' (%s) created successfully.\n", user.Username, user.Role)
}

func purgeTokens() {
	_, db := openDB()
	defer config.CloseDB(db)

	store := &services.DBTokenStore{DB: db}
	n, err := store.Purge(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("Failed to purge revoked tokens: %v", err)
	}
	fmt.Printf("Removed %d expired revoked token(s).\n", n)
}
