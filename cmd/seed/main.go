package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/config"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/infra/api"
	pg "celebrity-subscription/internal/infra/db/postgres"
	"celebrity-subscription/internal/usecase"
)

// defaultPrices is used when the config carries no pricing.defaults section.
var defaultPrices = map[string]map[string]string{
	"starter":    {"1_week": "200", "2_weeks": "350", "1_month": "600"},
	"basic_pro":  {"1_week": "500", "2_weeks": "900", "1_month": "1600"},
	"prime_plus": {"1_week": "1000", "2_weeks": "1800", "1_month": "3200"},
	"vip_elite":  {"1_week": "2000", "2_weeks": "3600", "1_month": "6500"},
}

func main() {
	admins := flag.String("admins", "", "comma separated admin emails to seed")
	celebs := flag.String("celebrities", "", "comma separated id:display_name pairs to seed")

	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Pricing catalog ----
	pricingUC := usecase.NewPricingUseCase(pg.NewPricingRepo(pool), nil)
	prices := cfg.Pricing.Defaults
	if len(prices) == 0 {
		prices = defaultPrices
	}
	tiers := make([]string, 0, len(prices))
	for t := range prices {
		tiers = append(tiers, t)
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		for duration, raw := range prices[tier] {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				log.Fatalf("price %s/%s: %v", tier, duration, err)
			}
			e, err := pricingUC.Set(ctx, tier, duration, price)
			if err != nil {
				log.Fatalf("seed price %s/%s: %v", tier, duration, err)
			}
			fmt.Printf("price: %s/%s = %s\n", e.Tier, e.Duration, e.Price.StringFixed(2))
		}
	}

	// ---- Celebrities ----
	celebRepo := pg.NewCelebrityRepo(pool)
	for _, pair := range splitList(*celebs) {
		id, name, _ := strings.Cut(pair, ":")
		if name == "" {
			name = id
		}
		if err := celebRepo.Save(ctx, nil, &model.Celebrity{ID: id, DisplayName: name}); err != nil {
			log.Fatalf("seed celebrity %s: %v", id, err)
		}
		fmt.Printf("celebrity: %s (%s)\n", id, name)
	}

	// ---- Admins ----
	adminRepo := pg.NewAdminRepo(pool)
	auth := api.NewJWTAuth(cfg.Auth)
	for _, email := range splitList(*admins) {
		if err := adminRepo.Save(ctx, nil, &model.AdminIdentity{ID: uuid.NewString(), Email: email}); err != nil {
			log.Fatalf("seed admin %s: %v", email, err)
		}
		tok, err := auth.Mint(email)
		if err != nil {
			log.Fatalf("mint token for %s: %v", email, err)
		}
		fmt.Printf("admin: %s\n  token: %s\n", email, tok)
	}

	fmt.Println("Seeding complete.")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
