package config

import (
	"fmt"
	"os"
	"strconv"
)

// 税率と流量制限の既定値
const (
	DefaultTaxRate       = 0.10
	DefaultRateLimit     = 5
	DefaultRateWindowSec = 60
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	TaxRate float64 // メニュー価格に掛ける税率

	RateLimit     int // 固定窓あたりの許可リクエスト数
	RateWindowSec int // 固定窓の秒数
}

// Loadは環境変数から読み込む
func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TaxRate:       DefaultTaxRate,
		RateLimit:     DefaultRateLimit,
		RateWindowSec: DefaultRateWindowSec,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if v := os.Getenv("TAX_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, fmt.Errorf("TAX_RATE must be a non-negative number")
		}
		cfg.TaxRate = f
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RATE_LIMIT must be a positive number")
		}
		cfg.RateLimit = n
	}

	if v := os.Getenv("RATE_WINDOW_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RATE_WINDOW_SEC must be a positive number")
		}
		cfg.RateWindowSec = n
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
