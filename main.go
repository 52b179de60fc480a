package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecommerce-api/config"
	"ecommerce-api/controllers"
	"ecommerce-api/database"
	"ecommerce-api/kafka"
	"ecommerce-api/logger"
	"ecommerce-api/models"
	"ecommerce-api/repository"
	"ecommerce-api/routes"
	"ecommerce-api/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.PricingSettings{},
	); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	store := repository.NewGormStore(db)

	// optional collaborators
	var cache *services.CartCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = services.NewCartCache(client, time.Duration(cfg.CartCacheTTLMin)*time.Minute)
		zlog.Info("cart cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	var producer kafka.ProducerAPI
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer p.Close()
		producer = p
		zlog.Info("order event producer enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaOrderTopic),
		)
	}

	stripeClient := services.NewStripeClient(
		cfg.StripeSecretKey,
		cfg.StripeWebhookKey,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
	)

	checkoutSvc := services.NewCheckoutService(store, stripeClient, cache, producer, cfg.Currency, zlog)
	cartSvc := services.NewCartService(store, cache, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(zlog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, routes.Controllers{
		Auth:    &controllers.AuthController{Auth: services.NewAuthService(store, cfg.JWTSecret)},
		Cart:    &controllers.CartController{Carts: cartSvc},
		Order: &controllers.OrderController{
			Checkout: checkoutSvc,
			Orders:   services.NewOrderService(store),
			Stripe:   stripeClient,
			Logger:   zlog,
		},
		Product: &controllers.ProductController{Store: store},
		Coupon:  &controllers.CouponController{Coupons: services.NewCouponService(store)},
		Pricing: &controllers.PricingController{Store: store},
	}, cfg.JWTSecret)

	zlog.Info("starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
