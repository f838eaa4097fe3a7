package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/tableside-app/config"
	"github.com/yeremiapane/tableside-app/database"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/router"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	stripe := services.GetStripeService()
	if err := stripe.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Stripe configuration incomplete: %v", err)
	}

	hub := notify.NewHub()

	r := router.SetupRouter(db, hub, stripe, stripe)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Cart{},
		&models.CartItem{},
		&models.CartItemModifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Bill{},
		&models.BillRequest{},
		&models.PaymentRef{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := database.EnsureGuards(db); err != nil {
		utils.ErrorLogger.Printf("Error installing schema guards: %v", err)
	}
}
